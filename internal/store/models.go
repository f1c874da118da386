package store

import "time"

type OKRStatus string

const (
	StatusOnTrack  OKRStatus = "on-track"
	StatusAtRisk   OKRStatus = "at-risk"
	StatusOffTrack OKRStatus = "off-track"
)

type TargetType string

const (
	TargetQuantitative    TargetType = "quantitative"
	TargetMilestone       TargetType = "milestone"
	TargetMilestoneCustom TargetType = "milestone-custom"
)

func (t TargetType) IsMilestone() bool {
	return t == TargetMilestone || t == TargetMilestoneCustom
}

type NotificationType string

const (
	NotificationDeadlineReminder NotificationType = "deadline_reminder"
	NotificationOKRUpdate        NotificationType = "okr_update"
	NotificationCheckInReminder  NotificationType = "checkin_reminder"
)

type Department string

// DepartmentOther is not a real department; it labels notifications that
// reference no OKR.
const DepartmentOther Department = "Other"

var Departments = []Department{
	"Operations",
	"Sales & Marketing",
	"HR",
	"Finance",
	"Accounting",
	"Consultant",
	"Review",
	"HSSEQ",
	"HSSE",
	"Digital Solutions",
	"Information Security",
	"Admin",
}

func ValidDepartment(d Department) bool {
	for _, known := range Departments {
		if known == d {
			return true
		}
	}
	return false
}

type MilestoneStage struct {
	ID       string
	Name     string
	Weight   int
	Progress int
}

// DefaultMilestoneStages returns the fixed template used for the plain
// "milestone" target type. Custom milestones supply their own stage list.
func DefaultMilestoneStages() []MilestoneStage {
	return []MilestoneStage{
		{Name: "Requirements Gathering", Weight: 20},
		{Name: "Design", Weight: 20},
		{Name: "Develop", Weight: 20},
		{Name: "Testing", Weight: 20},
		{Name: "Deployment", Weight: 20},
	}
}

type ProgressEntry struct {
	Date  time.Time
	Value float64
}

type KeyResult struct {
	ID              string
	Title           string
	StartDate       time.Time
	EndDate         time.Time
	Target          float64
	Current         float64
	Unit            string
	TargetType      TargetType
	MilestoneStages []MilestoneStage
	ProgressHistory []ProgressEntry
}

type CommentAttachment struct {
	ID       string
	FileName string
	FileType string
	FileURL  string
	FileSize int64
}

type Comment struct {
	ID          string
	Author      string
	Content     string
	Attachments []CommentAttachment
	CreatedAt   time.Time
}

type Initiative struct {
	ID        string
	Title     string
	Completed bool
	Assignee  string
	Comments  []Comment
}

type OKR struct {
	ID          string
	Department  Department
	Goal        string
	Status      OKRStatus // last-known hint; recomputed on every read
	KeyResults  []KeyResult
	Initiatives []Initiative
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CheckInKeyResultUpdate struct {
	KeyResultID    string
	KeyResultTitle string
	PreviousValue  float64
	NewValue       float64
}

type CheckIn struct {
	ID               string
	OKRID            string
	OKRGoal          string
	UserID           string
	UserName         string
	Department       Department
	Message          string
	KeyResultUpdates []CheckInKeyResultUpdate
	CreatedAt        time.Time
}

type Notification struct {
	ID          string
	UserID      string
	Type        NotificationType
	Title       string
	Message     string
	OKRID       string
	KeyResultID string
	Read        bool
	Deadline    *time.Time
	Department  Department // derived from the referenced OKR at read time
	CreatedAt   time.Time
}

type User struct {
	ID             string
	Email          string
	Name           string
	Password       string
	ProfilePicture string
}

type CompanyInfo struct {
	Mission       string
	Vision        string
	StrategicPlan []string
	Values        []string
}

func DefaultCompanyInfo() CompanyInfo {
	return CompanyInfo{
		Mission: "To provide quality training, review, and consultancy services to clients seeking growth and development.",
		Vision:  "To be the leading institution providing one-stop-shop services on becoming better, safer and healthier nation.",
		StrategicPlan: []string{
			"Safety First",
			"Integrity & Transparency",
			"Innovation & Excellence",
			"Sustainability",
			"Teamwork & Collaboration",
		},
		Values: []string{
			"Leadership in Health, Safety, and Environment",
			"Care for Clients and Stakeholders",
			"Committed to Quality and Excellence",
			"Respect for Diversity and Equality",
			"Passion for Service",
		},
	}
}
