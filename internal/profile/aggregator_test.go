package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavkapoor/campuschat/internal/api"
)

type fakeBackend struct {
	profile    api.StudentProfile
	profileErr error

	universities []api.University
	branches     []api.Branch
	branchesErr  error
	semesters    map[int][]api.Semester
	subjects     map[int][]api.Subject
	subjectsErr  error

	chats    []api.Chat
	chatsErr error
	messages map[int][]api.ChatMessage
	failMsgs map[int]bool
}

func (f *fakeBackend) Profile(context.Context) (*api.StudentProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := f.profile
	return &p, nil
}

func (f *fakeBackend) Universities(context.Context) ([]api.University, error) {
	return f.universities, nil
}

func (f *fakeBackend) Branches(context.Context) ([]api.Branch, error) {
	return f.branches, f.branchesErr
}

func (f *fakeBackend) Semesters(_ context.Context, branchID int) ([]api.Semester, error) {
	return f.semesters[branchID], nil
}

func (f *fakeBackend) Subjects(_ context.Context, semesterID int) ([]api.Subject, error) {
	if f.subjectsErr != nil {
		return nil, f.subjectsErr
	}
	return f.subjects[semesterID], nil
}

func (f *fakeBackend) Chats(context.Context) ([]api.Chat, error) {
	return f.chats, f.chatsErr
}

func (f *fakeBackend) ChatMessages(_ context.Context, chatID int) ([]api.ChatMessage, error) {
	if f.failMsgs[chatID] {
		return nil, fmt.Errorf("backend error 500: boom")
	}
	return f.messages[chatID], nil
}

func intPtr(v int) *int { return &v }

func studentFixture() api.StudentProfile {
	return api.StudentProfile{
		ID:           12,
		UniversityID: 3,
		BranchID:     intPtr(5),
		BatchYear:    intPtr(2023),
		IsActive:     true,
		Name:         "Asha Verma",
		Email:        "asha@example.edu",
	}
}

func backendFixture() *fakeBackend {
	return &fakeBackend{
		profile: studentFixture(),
		universities: []api.University{
			{ID: 1, Name: "Northfield Institute"},
			{ID: 3, Name: "Lakeview University"},
		},
		branches: []api.Branch{{ID: 5, Name: "Computer Science", UniversityID: 3}},
		semesters: map[int][]api.Semester{
			5: {
				{ID: 101, BranchID: 5, SemesterNumber: 1, Name: "Semester 1"},
				{ID: 102, BranchID: 5, SemesterNumber: 2, Name: "Semester 2"},
				{ID: 103, BranchID: 5, SemesterNumber: 3, Name: "Semester 3"},
				{ID: 104, BranchID: 5, SemesterNumber: 4, Name: "Semester 4"},
			},
		},
		subjects: map[int][]api.Subject{
			104: {
				{ID: 9001, SemesterID: 104, Name: "Operating Systems"},
				{ID: 9002, SemesterID: 104, Name: "Databases"},
			},
		},
		chats: []api.Chat{{ID: 1}, {ID: 2}, {ID: 3}},
		messages: map[int][]api.ChatMessage{
			2: {
				{Sender: api.SenderUser, Message: "q1"},
				{Sender: api.SenderBot, Message: "a1"},
				{Sender: api.SenderUser, Message: "q2"},
			},
			3: {{Sender: api.SenderUser, Message: "q3"}},
		},
		failMsgs: map[int]bool{1: true},
	}
}

// 2025-03-15 with batch year 2023 estimates semester 4.
var asOf = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestBuildFullOverview(t *testing.T) {
	backend := backendFixture()
	agg := NewAggregator(backend, nil, 2)

	overview, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, "Asha Verma", overview.Profile.Name)
	assert.Equal(t, "Lakeview University", overview.UniversityName)
	assert.Equal(t, "Computer Science", overview.BranchName)

	require.NotNil(t, overview.CurrentSemester)
	assert.Equal(t, 4, overview.CurrentSemester.SemesterNumber)
	require.Len(t, overview.Subjects, 2)
	assert.Equal(t, "Operating Systems", overview.Subjects[0].Name)

	// Chat 1 fails to load; chats 2 and 3 contribute 2+1 questions.
	assert.Equal(t, 3, overview.TotalChats)
	assert.Equal(t, 3, overview.TotalQuestions)
}

func TestBuildWithoutBranchSkipsAcademics(t *testing.T) {
	backend := backendFixture()
	backend.profile.BranchID = nil
	agg := NewAggregator(backend, nil, 2)

	overview, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, overview.BranchName)
	assert.Nil(t, overview.CurrentSemester)
	assert.Empty(t, overview.Subjects)
	assert.Equal(t, 3, overview.TotalQuestions)
}

func TestBuildWithoutBatchYearSkipsEstimate(t *testing.T) {
	backend := backendFixture()
	backend.profile.BatchYear = nil
	agg := NewAggregator(backend, nil, 2)

	overview, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", overview.BranchName)
	assert.Nil(t, overview.CurrentSemester)
}

func TestBuildDegradesLostSections(t *testing.T) {
	backend := backendFixture()
	backend.branchesErr = fmt.Errorf("backend error 500: boom")
	backend.chatsErr = fmt.Errorf("backend error 502: boom")
	agg := NewAggregator(backend, nil, 2)

	overview, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, overview.BranchName)
	assert.Nil(t, overview.CurrentSemester)
	assert.Zero(t, overview.TotalChats)
	assert.Zero(t, overview.TotalQuestions)

	// The profile itself still renders.
	assert.Equal(t, "asha@example.edu", overview.Profile.Email)
}

func TestBuildSubjectFailureKeepsSemester(t *testing.T) {
	backend := backendFixture()
	backend.subjectsErr = fmt.Errorf("backend error 500: boom")
	agg := NewAggregator(backend, nil, 2)

	overview, err := agg.Build(context.Background(), asOf)
	require.NoError(t, err)
	require.NotNil(t, overview.CurrentSemester)
	assert.Equal(t, 4, overview.CurrentSemester.SemesterNumber)
	assert.Empty(t, overview.Subjects)
}

func TestBuildFailsWithoutProfile(t *testing.T) {
	backend := backendFixture()
	backend.profileErr = fmt.Errorf("backend error 500: boom")
	agg := NewAggregator(backend, nil, 2)

	_, err := agg.Build(context.Background(), asOf)
	require.Error(t, err)
}

func TestBuildPropagatesExpiredSession(t *testing.T) {
	backend := backendFixture()
	backend.chatsErr = api.ErrSessionExpired
	agg := NewAggregator(backend, nil, 2)

	_, err := agg.Build(context.Background(), asOf)
	require.ErrorIs(t, err, api.ErrSessionExpired)
}
