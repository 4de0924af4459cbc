// Package profile assembles the student profile view: identity fields,
// the organizational hierarchy the student sits in, the estimated
// current semester with its subjects, and chat statistics.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arnavkapoor/campuschat/internal/academics"
	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/chats"
)

// Backend is the slice of the API client the aggregator consumes.
type Backend interface {
	Profile(ctx context.Context) (*api.StudentProfile, error)
	Universities(ctx context.Context) ([]api.University, error)
	Branches(ctx context.Context) ([]api.Branch, error)
	Semesters(ctx context.Context, branchID int) ([]api.Semester, error)
	Subjects(ctx context.Context, semesterID int) ([]api.Subject, error)
	Chats(ctx context.Context) ([]api.Chat, error)
	chats.MessageFetcher
}

// Overview is the view-ready profile aggregate. Fields that could not be
// resolved stay at their zero values; only a missing profile itself (or
// an expired session) fails the whole build.
type Overview struct {
	Profile api.StudentProfile

	UniversityName string
	BranchName     string

	// CurrentSemester is the estimator's pick, nil when the student has
	// no branch, no batch year, or the branch has no semesters.
	CurrentSemester *api.Semester

	// Subjects lists the current semester's subjects.
	Subjects []api.Subject

	TotalChats     int
	TotalQuestions int
}

type Aggregator struct {
	backend Backend
	logger  *zap.Logger
	fanout  *chats.Aggregator
}

func NewAggregator(backend Backend, logger *zap.Logger, fetchConcurrency int) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		backend: backend,
		logger:  logger,
		fanout:  chats.NewAggregator(backend, logger, fetchConcurrency),
	}
}

// Build resolves the profile page's data through sequential dependent
// lookups (profile -> branch -> semesters -> subjects) plus the chat
// fan-out. Lookup failures past the profile itself degrade that section
// and are logged, mirroring how each lost section renders as a blank in
// the view rather than an error page.
func (a *Aggregator) Build(ctx context.Context, now time.Time) (*Overview, error) {
	student, err := a.backend.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	overview := &Overview{Profile: *student}

	if name, err := a.universityName(ctx, student.UniversityID); err != nil {
		if sessionGone(err) {
			return nil, err
		}
		a.logger.Warn("resolving university name", zap.Int("university_id", student.UniversityID), zap.Error(err))
	} else {
		overview.UniversityName = name
	}

	if student.BranchID != nil {
		if err := a.resolveAcademics(ctx, overview, *student.BranchID, student.BatchYear, now); err != nil {
			if sessionGone(err) {
				return nil, err
			}
			a.logger.Warn("resolving academic hierarchy", zap.Int("branch_id", *student.BranchID), zap.Error(err))
		}
	}

	chatList, err := a.backend.Chats(ctx)
	if err != nil {
		if sessionGone(err) {
			return nil, err
		}
		a.logger.Warn("loading chats for statistics", zap.Error(err))
		return overview, nil
	}

	summary := a.fanout.Summarize(ctx, chatList)
	overview.TotalChats = len(chatList)
	overview.TotalQuestions = summary.TotalQuestions

	return overview, nil
}

func (a *Aggregator) universityName(ctx context.Context, universityID int) (string, error) {
	universities, err := a.backend.Universities(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range universities {
		if u.ID == universityID {
			return u.Name, nil
		}
	}
	return "", fmt.Errorf("university %d not in listing", universityID)
}

func (a *Aggregator) resolveAcademics(ctx context.Context, overview *Overview, branchID int, batchYear *int, now time.Time) error {
	branches, err := a.backend.Branches(ctx)
	if err != nil {
		return err
	}
	for _, b := range branches {
		if b.ID == branchID {
			overview.BranchName = b.Name
			break
		}
	}

	if batchYear == nil {
		return nil
	}

	semesters, err := a.backend.Semesters(ctx, branchID)
	if err != nil {
		return err
	}

	current, ok := academics.EstimateSemester(*batchYear, now, semesters)
	if !ok {
		return nil
	}
	overview.CurrentSemester = &current

	subjects, err := a.backend.Subjects(ctx, current.ID)
	if err != nil {
		// The semester is still worth showing without its subjects.
		a.logger.Warn("loading subjects for current semester", zap.Int("semester_id", current.ID), zap.Error(err))
		return nil
	}
	overview.Subjects = subjects
	return nil
}

func sessionGone(err error) bool {
	return errors.Is(err, api.ErrSessionExpired)
}
