package model

// Capability is a typed code for a specific system action. Each protected
// operation declares the capability it requires; the set is resolved once at
// login from the staff role, not re-derived per call.
type Capability string

const (
	// CapabilityQuestionsRead allows viewing the question bank.
	CapabilityQuestionsRead Capability = "questions:read"

	// CapabilityQuestionsWrite allows creating and editing own bank questions.
	CapabilityQuestionsWrite Capability = "questions:write"

	// CapabilityExamsRead allows viewing exam lists and details.
	CapabilityExamsRead Capability = "exams:read"

	// CapabilityExamsWrite allows creating exams and editing own drafts.
	CapabilityExamsWrite Capability = "exams:write"

	// CapabilityExamsTransition allows advancing an exam's lifecycle status.
	CapabilityExamsTransition Capability = "exams:transition"

	// CapabilityResultsRead allows viewing results and grade distributions.
	CapabilityResultsRead Capability = "results:read"

	// CapabilityResultsGrade allows recording or amending results by hand.
	CapabilityResultsGrade Capability = "results:grade"

	// CapabilityExamsMonitor allows streaming the live exam monitor.
	CapabilityExamsMonitor Capability = "exams:monitor"
)

// roleCapabilities maps each staff role to its capability set.
var roleCapabilities = map[StaffRole][]Capability{
	StaffRoleTeacher: {
		CapabilityQuestionsRead,
		CapabilityQuestionsWrite,
		CapabilityExamsRead,
		CapabilityExamsWrite,
		CapabilityExamsTransition,
		CapabilityResultsRead,
		CapabilityResultsGrade,
		CapabilityExamsMonitor,
	},
	StaffRolePrincipal: {
		CapabilityQuestionsRead,
		CapabilityQuestionsWrite,
		CapabilityExamsRead,
		CapabilityExamsWrite,
		CapabilityExamsTransition,
		CapabilityResultsRead,
		CapabilityResultsGrade,
		CapabilityExamsMonitor,
	},
}

// CapabilitiesForRole returns the capability codes embedded in a staff
// token at login.
func CapabilitiesForRole(role StaffRole) []string {
	caps := roleCapabilities[role]
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return out
}
