package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

const DefaultAvatarURL = "https://ftp.goit.study/img/avatars/1.jpg"

// ApplyDefaults fills the fields a seed record left empty. n is the record's
// 1-based position and names teachers that have no id.
func ApplyDefaults(t models.Teacher, n int) models.Teacher {
	t.ID = models.NormalizeID(t.ID)
	if t.ID == "" {
		t.ID = fmt.Sprintf("teacher_%d", n)
	}
	if strings.TrimSpace(t.Name) == "" {
		t.Name = "Unknown"
	}
	if strings.TrimSpace(t.Surname) == "" {
		t.Surname = "Teacher"
	}
	if len(t.Languages) == 0 {
		t.Languages = []string{"English"}
	}
	if len(t.Levels) == 0 {
		t.Levels = []string{models.LevelA1}
	}
	if t.Rating == 0 {
		t.Rating = 4.0
	}
	if t.PricePerHour <= 0 {
		t.PricePerHour = 25
	}
	if t.LessonsDone == 0 {
		t.LessonsDone = 100
	}
	if strings.TrimSpace(t.AvatarURL) == "" {
		t.AvatarURL = DefaultAvatarURL
	}
	if strings.TrimSpace(t.LessonInfo) == "" {
		t.LessonInfo = "Professional language lessons"
	}
	if len(t.Conditions) == 0 {
		t.Conditions = []string{"Flexible schedule"}
	}
	if strings.TrimSpace(t.Experience) == "" {
		t.Experience = "Experienced language teacher"
	}
	return t
}

// Adder is the part of the gateway seeding writes through.
type Adder interface {
	AddTeacher(ctx context.Context, t models.Teacher) (string, error)
}

// SeedReport counts what Seed did.
type SeedReport struct {
	Added   int
	Skipped int
	Failed  int
}

// Seed writes teachers one by one. Existing ids are skipped; other failures are
// counted and the first one is returned once every record was attempted.
func Seed(ctx context.Context, store Adder, teachers []models.Teacher, log logger.Logger) (SeedReport, error) {
	if log == nil {
		log = logger.Nop()
	}
	var (
		report   SeedReport
		firstErr error
	)
	for i, t := range teachers {
		t = ApplyDefaults(t, i+1)
		id, err := store.AddTeacher(ctx, t)
		switch {
		case err == nil:
			report.Added++
			log.Info(fmt.Sprintf("✅ Teacher %d uploaded: %s", i+1, t.FullName()), map[string]interface{}{"id": id})
		case errors.Is(err, database.ErrDuplicate):
			report.Skipped++
			log.Info(fmt.Sprintf("Teacher %s already exists, skipping", t.ID))
		default:
			report.Failed++
			log.Error(fmt.Sprintf("🔥 Failed to upload teacher %d", i+1), err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "teacher %s", t.ID)
			}
		}
	}
	return report, firstErr
}
