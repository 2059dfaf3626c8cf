package bootstrap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/persistence"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Seed inserts count users and, acting as each of them, one row in every
// audited portal table. Every other user also edits and removes part of what
// they created, so all capture operations leave entries behind.
func Seed(ctx context.Context, cfg config.Config, count, batchSize int) error {
	if count <= 0 {
		count = 10
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := OpenDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	users := make([]entity.User, 0, count)
	baseTime := time.Now().UTC()
	for i := 0; i < count; i++ {
		users = append(users, entity.User{
			Username:  fmt.Sprintf("%s-%s", faker.Username(), uuid.NewString()[:8]),
			Email:     fmt.Sprintf("seed-%s@example.com", uuid.NewString()),
			CreatedAt: baseTime.Add(time.Duration(i) * time.Microsecond),
		})
	}
	if err := conn.Write(ctx).CreateInBatches(&users, batchSize).Error; err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	portal := persistence.NewPortalRepository(conn)
	var mutated int
	for i, user := range users {
		userCtx := actor.WithID(ctx, user.ID)
		records, err := seedPortal(userCtx, portal, user.ID)
		if err != nil {
			return err
		}
		if i%2 == 1 {
			if err := churn(userCtx, portal, records); err != nil {
				return err
			}
			mutated++
		}
	}

	log.WithFields(logrus.Fields{
		"users":   len(users),
		"rows":    len(users) * 6,
		"churned": mutated,
	}).Info("bootstrap: seed complete")
	return nil
}

type seededRecords struct {
	conference *entity.Conference
	member     *entity.Member
	news       *entity.News
	course     *entity.Course
	posting    *entity.JobPosting
	project    *entity.Project
}

func seedPortal(ctx context.Context, portal repository.PortalRepository, owner int64) (seededRecords, error) {
	now := time.Now().UTC()
	later := now.Add(7 * 24 * time.Hour)
	source := faker.DomainName()

	rec := seededRecords{
		conference: &entity.Conference{
			Title:       faker.Sentence(),
			Speaker:     faker.Name(),
			ScheduledAt: &later,
			Description: faker.Paragraph(),
			Image:       seedImage(),
			Link:        faker.URL(),
			CreatorID:   &owner,
		},
		member: &entity.Member{
			FullName:  faker.Name(),
			Semester:  strconv.Itoa(1 + len(source)%8),
			Email:     faker.Email(),
			GitURL:    "https://github.com/" + faker.Username(),
			Bio:       faker.Sentence(),
			Active:    true,
			Image:     avatar(owner),
			CreatorID: &owner,
		},
		news: &entity.News{
			Title:       faker.Sentence(),
			PublishedAt: now,
			Link:        faker.URL(),
			Description: faker.Paragraph(),
			Source:      &source,
			Image:       seedImage(),
			CreatorID:   &owner,
		},
		course: &entity.Course{
			Name:        faker.Word() + " fundamentals",
			StartsAt:    &now,
			EndsAt:      &later,
			Link:        faker.URL(),
			Description: faker.Paragraph(),
			CreatorID:   &owner,
		},
		posting: &entity.JobPosting{
			Title:       faker.Word() + " engineer",
			Company:     faker.DomainName(),
			Description: faker.Paragraph(),
			Image:       seedImage(),
			Link:        faker.URL(),
			CreatorID:   &owner,
		},
		project: &entity.Project{
			Name:        faker.Word() + "-" + uuid.NewString()[:4],
			ProjectDate: now,
			Link:        faker.URL(),
			Description: faker.Paragraph(),
			CreatorID:   &owner,
		},
	}

	for _, record := range []any{rec.conference, rec.member, rec.news, rec.course, rec.posting, rec.project} {
		if err := portal.Create(ctx, record); err != nil {
			return rec, fmt.Errorf("seed %T: %w", record, err)
		}
	}
	if err := portal.AddProjectMember(ctx, rec.project.ID, rec.member.ID); err != nil {
		return rec, fmt.Errorf("seed project member: %w", err)
	}
	return rec, nil
}

// churn edits a field captured on update for each table, then deletes the
// course and the job posting.
func churn(ctx context.Context, portal repository.PortalRepository, rec seededRecords) error {
	updates := []struct {
		record any
		column string
		value  any
	}{
		{rec.member, "active", false},
		{rec.news, "title", faker.Sentence()},
		{rec.course, "name", faker.Word() + " advanced"},
		{rec.posting, "company", faker.DomainName()},
		{rec.project, "name", faker.Word() + "-" + uuid.NewString()[:4]},
	}
	if err := portal.UpdateConferenceTitle(ctx, rec.conference.ID, faker.Sentence()); err != nil {
		return fmt.Errorf("churn conference title: %w", err)
	}
	for _, u := range updates {
		if err := portal.UpdateColumn(ctx, u.record, u.column, u.value); err != nil {
			return fmt.Errorf("churn %T.%s: %w", u.record, u.column, err)
		}
	}
	for _, record := range []any{rec.course, rec.posting} {
		if err := portal.Delete(ctx, record); err != nil {
			return fmt.Errorf("churn delete %T: %w", record, err)
		}
	}
	return nil
}

func seedImage() datatypes.JSONType[entity.ImageRef] {
	return datatypes.NewJSONType(entity.ExternalImage(faker.URL()))
}

// avatar is a stored-blob image keyed by a digest derived from the owner, as
// an uploaded profile picture would be.
func avatar(owner int64) datatypes.JSONType[entity.ImageRef] {
	sum := sha256.Sum256([]byte("avatar-" + strconv.FormatInt(owner, 10)))
	return datatypes.NewJSONType(entity.BlobImage("sha256:"+hex.EncodeToString(sum[:]), "image/png"))
}
