package models

import "testing"

func TestValidSemester(t *testing.T) {
	if !ValidSemester(SemesterWinter) || !ValidSemester(SemesterSpring) {
		t.Error("known semester values rejected")
	}
	for _, s := range []Semester{"", "SUMMER", "winter", "FALL"} {
		if ValidSemester(s) {
			t.Errorf("ValidSemester(%q) = true, want false", s)
		}
	}
}

func TestClampGrade(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name     string
		grade    *int
		maxGrade int
		want     *int
	}{
		{name: "nil stays nil", grade: nil, maxGrade: 10, want: nil},
		{name: "in range untouched", grade: intPtr(7), maxGrade: 10, want: intPtr(7)},
		{name: "above max clamped", grade: intPtr(15), maxGrade: 10, want: intPtr(10)},
		{name: "below zero clamped", grade: intPtr(-3), maxGrade: 10, want: intPtr(0)},
		{name: "at max untouched", grade: intPtr(10), maxGrade: 10, want: intPtr(10)},
		{name: "at zero untouched", grade: intPtr(0), maxGrade: 10, want: intPtr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampGrade(tt.grade, tt.maxGrade)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %d, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("got nil, want %d", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("got %d, want %d", *got, *tt.want)
			}
		})
	}
}

func TestClampGrade_DoesNotMutateInput(t *testing.T) {
	grade := 99
	ClampGrade(&grade, 10)
	if grade != 99 {
		t.Errorf("input mutated to %d", grade)
	}
}

func TestUserRoleHelpers(t *testing.T) {
	teacher := &User{Role: RoleTeacher}
	student := &User{Role: RoleStudent}

	if !teacher.IsTeacher() || teacher.IsStudent() {
		t.Error("teacher role helpers wrong")
	}
	if !student.IsStudent() || student.IsTeacher() {
		t.Error("student role helpers wrong")
	}

	var nobody *User
	if nobody.IsTeacher() || nobody.IsStudent() {
		t.Error("nil user has a role")
	}
}
