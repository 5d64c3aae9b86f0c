package nav

import (
	"fmt"

	"github.com/madrasahub/madrasa/core/session"
)

// Page is a logical screen identifier. The history stack always starts at
// PageLogin; "current page" is the last element.
type Page string

const (
	PageLogin Page = "login"

	// super-admin
	PageSuperAdminHome   Page = "super_admin_home"
	PageSchoolManagement Page = "school_management"

	// principal
	PageStageSelection Page = "stage_selection"
	PagePrincipalHome  Page = "principal_home"
	PageTeacherList    Page = "teacher_list"

	// teacher (also reachable by an impersonating principal)
	PageTeacherHome   Page = "teacher_home"
	PageClassPicker   Page = "class_picker"
	PageSubjectBoard  Page = "subject_board"
	PageManageGrades  Page = "manage_grades"
	PageStudentReport Page = "student_report"
	PageNotesReview   Page = "notes_review"

	// guardian
	PageGuardianHome  Page = "guardian_home"
	PageGradesView    Page = "grades_view"
	PageAnnouncements Page = "announcements"
	PageFees          Page = "fees"
)

var knownPages = map[Page]bool{
	PageLogin:            true,
	PageSuperAdminHome:   true,
	PageSchoolManagement: true,
	PageStageSelection:   true,
	PagePrincipalHome:    true,
	PageTeacherList:      true,
	PageTeacherHome:      true,
	PageClassPicker:      true,
	PageSubjectBoard:     true,
	PageManageGrades:     true,
	PageStudentReport:    true,
	PageNotesReview:      true,
	PageGuardianHome:     true,
	PageGradesView:       true,
	PageAnnouncements:    true,
	PageFees:             true,
}

func ValidPage(p Page) bool { return knownPages[p] }

// HomeFor returns the landing page for a freshly resolved session.
func HomeFor(role session.Role) Page {
	switch role {
	case session.RoleSuperAdmin:
		return PageSuperAdminHome
	case session.RolePrincipal:
		return PageStageSelection
	case session.RoleTeacher:
		return PageTeacherHome
	case session.RoleGuardian:
		return PageGuardianHome
	}
	return PageLogin
}

// ResetKey names one piece of selection state a page transition may clear.
type ResetKey string

const (
	ResetSelectedStage   ResetKey = "selected_stage"
	ResetSelectedLevel   ResetKey = "selected_level"
	ResetSelectedClass   ResetKey = "selected_class"
	ResetSelectedSubject ResetKey = "selected_subject"
	ResetGradingStudent  ResetKey = "grading_student"
	ResetImpersonation   ResetKey = "impersonation"
	ResetViewingSchool   ResetKey = "viewing_school"
)

// resetRules is the declarative transition table: leaving a page clears the
// listed keys. Replaces the historical chain of `if leavingPage == X` resets;
// skipping a rule here leaks stale selection into an unrelated later screen.
var resetRules = map[Page][]ResetKey{
	PageSchoolManagement: {ResetViewingSchool},
	PagePrincipalHome:    {ResetSelectedStage},
	PageClassPicker:      {ResetSelectedLevel, ResetSelectedClass},
	PageSubjectBoard:     {ResetSelectedSubject},
	PageManageGrades:     {ResetGradingStudent},
	PageStudentReport:    {ResetGradingStudent},
	PageTeacherHome:      {ResetImpersonation},
}

func init() {
	// the table must only name known pages; a typo here is a programmer error
	for page := range resetRules {
		if !ValidPage(page) {
			panic(fmt.Sprintf("nav: reset rule for unknown page %q", page))
		}
	}
}

func applyReset(sess *session.Session, key ResetKey) {
	switch key {
	case ResetSelectedStage:
		sess.SelectedStage = ""
	case ResetSelectedLevel:
		sess.SelectedLevel = ""
	case ResetSelectedClass:
		sess.SelectedClass = ""
	case ResetSelectedSubject:
		sess.SelectedSubject = ""
	case ResetGradingStudent:
		sess.GradingStudentID = ""
	case ResetImpersonation:
		sess.ImpersonatedTeacherID = ""
	case ResetViewingSchool:
		sess.ViewingSchoolID = ""
	}
}

// State is one signed-in client's navigation history and session.
type State struct {
	Session session.Session
	history []Page
}

func NewState(sess session.Session) *State {
	return &State{
		Session: sess,
		history: []Page{PageLogin},
	}
}

func (s *State) Current() Page { return s.history[len(s.history)-1] }

// snapshot copies the state so it can be read after the manager lock is
// released.
func (s *State) snapshot() State {
	return State{Session: s.Session, history: s.History()}
}

func (s *State) History() []Page {
	out := make([]Page, len(s.history))
	copy(out, s.history)
	return out
}

func (s *State) NavigateTo(page Page) error {
	if !ValidPage(page) {
		return fmt.Errorf("unknown page %q", page)
	}
	s.history = append(s.history, page)
	return nil
}

// GoBack pops one entry and applies the reset rules of the page being left.
// On a single-entry history it is a no-op.
func (s *State) GoBack() {
	if len(s.history) <= 1 {
		return
	}
	leaving := s.Current()
	s.history = s.history[:len(s.history)-1]
	for _, key := range resetRules[leaving] {
		applyReset(&s.Session, key)
	}
}

// Logout resets the stack to the login entry and clears all session and
// selection state unconditionally. Calling it twice is the same as once.
func (s *State) Logout() {
	s.history = []Page{PageLogin}
	s.Session = session.Session{}
}
