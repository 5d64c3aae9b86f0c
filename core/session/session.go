package session

import "reflect"

// Role identifies which portal a resolved login code opens.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RolePrincipal  Role = "principal"
	RoleGuardian   Role = "guardian"
	RoleTeacher    Role = "teacher"
)

// Session is the resolved identity plus every piece of cross-screen selection
// state. It is a value object: navigation owns the single mutable copy and
// every transition side effect goes through the declarative reset table.
type Session struct {
	Role     Role   `json:"role,omitempty"`
	SchoolID string `json:"school_id,omitempty"`

	// Principal context: every stage this code is a principal of.
	Stages []string `json:"stages,omitempty"`
	// Guardian context.
	StudentID string `json:"student_id,omitempty"`
	// Teacher context.
	TeacherID string `json:"teacher_id,omitempty"`

	// Cross-screen selections.
	SelectedStage   string `json:"selected_stage,omitempty"`
	SelectedLevel   string `json:"selected_level,omitempty"`
	SelectedClass   string `json:"selected_class,omitempty"`
	SelectedSubject string `json:"selected_subject,omitempty"`
	// GradingStudentID is the student currently being graded or reported on.
	GradingStudentID string `json:"grading_student_id,omitempty"`
	// ImpersonatedTeacherID is set while a principal browses as a teacher.
	ImpersonatedTeacherID string `json:"impersonated_teacher_id,omitempty"`
	// ViewingSchoolID is set while the super-admin manages one school.
	ViewingSchoolID string `json:"viewing_school_id,omitempty"`
}

func (s Session) IsZero() bool { return reflect.DeepEqual(s, Session{}) }

func (s Session) HasStage(stage string) bool {
	for _, st := range s.Stages {
		if st == stage {
			return true
		}
	}
	return false
}
