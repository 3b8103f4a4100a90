package repository

import "testing"

func TestNextSchedule(t *testing.T) {
	fresh := Schedule{IntervalDays: 1, EaseFactor: 2.5}

	tests := []struct {
		name   string
		cur    Schedule
		rating int
		want   Schedule
	}{
		{"first good review", fresh, 2, Schedule{IntervalDays: 1, EaseFactor: 2.5, Repetitions: 1}},
		{"second easy review", Schedule{IntervalDays: 1, EaseFactor: 2.5, Repetitions: 1}, 3, Schedule{IntervalDays: 6, EaseFactor: 2.6, Repetitions: 2}},
		{"third easy review", Schedule{IntervalDays: 6, EaseFactor: 2.5, Repetitions: 2}, 3, Schedule{IntervalDays: 15, EaseFactor: 2.6, Repetitions: 3}},
		{"again resets", Schedule{IntervalDays: 15, EaseFactor: 2.5, Repetitions: 3}, 0, Schedule{IntervalDays: 1, EaseFactor: 2.18, Repetitions: 0}},
		{"ease floor", Schedule{IntervalDays: 1, EaseFactor: 1.3}, 0, Schedule{IntervalDays: 1, EaseFactor: 1.3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NextSchedule(tc.cur, tc.rating)
			if got.IntervalDays != tc.want.IntervalDays || got.Repetitions != tc.want.Repetitions {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
			if diff := got.EaseFactor - tc.want.EaseFactor; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected ease %.2f, got %.4f", tc.want.EaseFactor, got.EaseFactor)
			}
		})
	}
}
