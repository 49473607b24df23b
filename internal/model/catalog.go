package model

// Subject is a taught subject, referenced by questions and exams.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Class is a school class (e.g. "10 A"), the scope an exam targets.
type Class struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	GradeLevel string `json:"grade_level"`
}

// CreateSubjectRequest is the payload for adding a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// CreateClassRequest is the payload for adding a class.
type CreateClassRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=50"`
	GradeLevel string `json:"grade_level" binding:"required,min=1,max=10"`
}
