package graph

// RecordType is the semantic category assigned to one export file.
type RecordType string

const (
	TypeUnknown RecordType = ""

	TypeAdTargeting             RecordType = "AD_TARGETING"
	TypeCompanyFollows          RecordType = "COMPANY_FOLLOWS"
	TypeConnections             RecordType = "CONNECTIONS"
	TypeEducation               RecordType = "EDUCATION"
	TypeEmailAddresses          RecordType = "EMAIL_ADDRESSES"
	TypeEndorsementGiven        RecordType = "ENDORSEMENT_GIVEN_INFO"
	TypeEndorsementReceived     RecordType = "ENDORSEMENT_RECEIVED_INFO"
	TypeEvents                  RecordType = "EVENTS"
	TypeInvitations             RecordType = "INVITATIONS"
	TypeJobApplicantAnswers     RecordType = "JOB_APPLICANT_SAVED_ANSWERS"
	TypeJobApplicantScreening   RecordType = "JOB_APPLICANT_SAVED_SCREENING_QUESTION_RESPONSES"
	TypeJobApplications         RecordType = "JOB_APPLICATIONS"
	TypeJobSeekerPreferences    RecordType = "JOB_SEEKER_PREFERENCES"
	TypeSavedJobs               RecordType = "SAVED_JOBS"
	TypeLanguages               RecordType = "LANGUAGES"
	TypeLearning                RecordType = "LEARNING"
	TypePhoneNumbers            RecordType = "PHONE_NUMBERS"
	TypePositions               RecordType = "POSITIONS"
	TypeProfileSummary          RecordType = "PROFILE_SUMMARY"
	TypeProfile                 RecordType = "PROFILE"
	TypeRegistration            RecordType = "REGISTRATION"
	TypeRichMedia               RecordType = "RICH_MEDIA"
	TypeSkills                  RecordType = "SKILLS"
	TypeCoachMessages           RecordType = "COACH_MESSAGES"
	TypeLearningCoachMessages   RecordType = "LEARNING_COACH_MESSAGES"
	TypeLearningRolePlayMessages RecordType = "LEARNING_ROLE_PLAY_MESSAGES"
	TypeMessages                RecordType = "MESSAGES"
)

// fileTypeByName maps the exact file names LinkedIn ships in a data export
// to their record type. Names are matched verbatim, spaces and casing
// included; anything else classifies as TypeUnknown.
var fileTypeByName = map[string]RecordType{
	"Ad_Targeting.csv":                    TypeAdTargeting,
	"Company Follows.csv":                 TypeCompanyFollows,
	"Connections.csv":                     TypeConnections,
	"Education.csv":                       TypeEducation,
	"Email Addresses.csv":                 TypeEmailAddresses,
	"Endorsement_Given_Info.csv":          TypeEndorsementGiven,
	"Endorsement_Received_Info.csv":       TypeEndorsementReceived,
	"Events.csv":                          TypeEvents,
	"Invitations.csv":                     TypeInvitations,
	"Job Applicant Saved Answers.csv":     TypeJobApplicantAnswers,
	"Job Applicant Saved Screening Question Responses.csv": TypeJobApplicantScreening,
	"Job Applications.csv":                TypeJobApplications,
	"Job Seeker Preferences.csv":          TypeJobSeekerPreferences,
	"Saved Jobs.csv":                      TypeSavedJobs,
	"Languages.csv":                       TypeLanguages,
	"Learning.csv":                        TypeLearning,
	"PhoneNumbers.csv":                    TypePhoneNumbers,
	"Positions.csv":                       TypePositions,
	"Profile Summary.csv":                 TypeProfileSummary,
	"Profile.csv":                         TypeProfile,
	"Registration.csv":                    TypeRegistration,
	"Rich_Media.csv":                      TypeRichMedia,
	"Skills.csv":                          TypeSkills,
	"coach_messages.csv":                  TypeCoachMessages,
	"learning_coach_messages.csv":         TypeLearningCoachMessages,
	"learning_role_play_messages.csv":     TypeLearningRolePlayMessages,
	"messages.csv":                        TypeMessages,
}

// Classify returns the record type for an export file name, or TypeUnknown
// when the name is not part of the export contract.
func Classify(fileName string) RecordType {
	return fileTypeByName[fileName]
}

// KnownFileNames returns every file name in the registry. Used by tests and
// by the UI to show what an import can consume.
func KnownFileNames() []string {
	names := make([]string, 0, len(fileTypeByName))
	for name := range fileTypeByName {
		names = append(names, name)
	}
	return names
}
