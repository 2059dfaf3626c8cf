package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Portal business entities. Their CRUD surface lives elsewhere; they are
// modelled here because every mutation on them is captured into audit_logs.

type Conference struct {
	ID          int64                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                       `gorm:"column:title;not null" json:"title"`
	Speaker     string                       `gorm:"column:speaker;not null" json:"speaker"`
	ScheduledAt *time.Time                   `gorm:"column:scheduled_at" json:"scheduled_at"`
	Description string                       `gorm:"column:description;not null" json:"description"`
	Image       datatypes.JSONType[ImageRef] `gorm:"column:image;type:jsonb;not null" json:"image"`
	Link        string                       `gorm:"column:link;not null" json:"link"`
	CreatorID   *int64                       `gorm:"column:creator_id" json:"creator_id"`
}

func (Conference) TableName() string { return "conferences" }

type Member struct {
	ID        int64                        `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName  string                       `gorm:"column:full_name;not null" json:"full_name"`
	Semester  string                       `gorm:"column:semester;not null" json:"semester"`
	Email     string                       `gorm:"column:email;not null" json:"email"`
	GitURL    string                       `gorm:"column:git_url;not null" json:"git_url"`
	Bio       string                       `gorm:"column:bio;not null" json:"bio"`
	Active    bool                         `gorm:"column:active;not null" json:"active"`
	Image     datatypes.JSONType[ImageRef] `gorm:"column:image;type:jsonb;not null" json:"image"`
	CreatorID *int64                       `gorm:"column:creator_id" json:"creator_id"`
}

func (Member) TableName() string { return "members" }

type News struct {
	ID          int64                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                       `gorm:"column:title;not null" json:"title"`
	PublishedAt time.Time                    `gorm:"column:published_at;not null" json:"published_at"`
	Link        string                       `gorm:"column:link;not null" json:"link"`
	Description string                       `gorm:"column:description;not null" json:"description"`
	Source      *string                      `gorm:"column:source" json:"source"`
	Image       datatypes.JSONType[ImageRef] `gorm:"column:image;type:jsonb;not null" json:"image"`
	CreatorID   *int64                       `gorm:"column:creator_id" json:"creator_id"`
}

func (News) TableName() string { return "news" }

type Course struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	StartsAt    *time.Time `gorm:"column:starts_at" json:"starts_at"`
	EndsAt      *time.Time `gorm:"column:ends_at" json:"ends_at"`
	Link        string     `gorm:"column:link;not null" json:"link"`
	Description string     `gorm:"column:description;not null" json:"description"`
	CreatorID   *int64     `gorm:"column:creator_id" json:"creator_id"`
}

func (Course) TableName() string { return "courses" }

// JobPostingLifetime is how long a posting stays open when no expiry is given.
const JobPostingLifetime = 60 * 24 * time.Hour

type JobPosting struct {
	ID          int64                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                       `gorm:"column:title;not null" json:"title"`
	Company     string                       `gorm:"column:company;not null" json:"company"`
	PublishedAt *time.Time                   `gorm:"column:published_at" json:"published_at"`
	Description string                       `gorm:"column:description;not null" json:"description"`
	Image       datatypes.JSONType[ImageRef] `gorm:"column:image;type:jsonb;not null" json:"image"`
	Link        string                       `gorm:"column:link;not null" json:"link"`
	ExpiresAt   *time.Time                   `gorm:"column:expires_at" json:"expires_at"`
	CreatorID   *int64                       `gorm:"column:creator_id" json:"creator_id"`
}

func (JobPosting) TableName() string { return "job_postings" }

// ApplyPublicationDefaults stamps the publication time of a new posting and
// derives its expiry when none was given.
func (j *JobPosting) ApplyPublicationDefaults(now time.Time) {
	if j.PublishedAt == nil {
		published := now.UTC()
		j.PublishedAt = &published
	}
	if j.ExpiresAt == nil {
		expires := j.PublishedAt.Add(JobPostingLifetime)
		j.ExpiresAt = &expires
	}
}

type Project struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	ProjectDate time.Time `gorm:"column:project_date;not null" json:"project_date"`
	Link        string    `gorm:"column:link;not null" json:"link"`
	Description string    `gorm:"column:description;not null" json:"description"`
	CreatorID   *int64    `gorm:"column:creator_id" json:"creator_id"`
	Members     []Member  `gorm:"many2many:project_members;" json:"members,omitempty"`
}

func (Project) TableName() string { return "projects" }

// ValidateImages checks the image reference of records that carry one.
// Records without an image always pass.
func ValidateImages(record any) error {
	var ref ImageRef
	switch r := record.(type) {
	case *Conference:
		ref = r.Image.Data()
	case *Member:
		ref = r.Image.Data()
	case *News:
		ref = r.Image.Data()
	case *JobPosting:
		ref = r.Image.Data()
	default:
		return nil
	}
	return ref.Validate()
}
