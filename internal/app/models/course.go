package models

import "time"

// Course is owned by the directory subsystem; the exam engine only reads it.
type Course struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Student is owned by the directory subsystem.
type Student struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"fullName" db:"full_name"`
	Email    string `json:"email" db:"email"`
}

// Enrollment is a StudentCourse row. Score is written only by result computation.
type Enrollment struct {
	StudentID int64   `json:"studentId" db:"student_id"`
	CourseID  int64   `json:"courseId" db:"course_id"`
	Score     *string `json:"score,omitempty" db:"grade"`
}
