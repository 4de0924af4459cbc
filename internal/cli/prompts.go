package cli

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/chats"
)

const minPasswordLength = 8

// Credentials holds a login prompt's answers.
type Credentials struct {
	Email    string
	Password string
}

// PasswordChange holds a password-change prompt's answers, already
// validated against the local input policy.
type PasswordChange struct {
	Current string
	New     string
}

// PromptForCredentials asks for email and password. A pre-supplied email
// (from --email) skips the first prompt.
func PromptForCredentials(email string) (Credentials, error) {
	creds := Credentials{Email: strings.TrimSpace(email)}

	if creds.Email == "" {
		prompt := &survey.Input{
			Message: "Email:",
			Help:    "The email address your university registered you with",
		}
		err := survey.AskOne(prompt, &creds.Email, survey.WithValidator(func(val interface{}) error {
			return validateEmail(val.(string))
		}))
		if err != nil {
			return Credentials{}, err
		}
		creds.Email = strings.TrimSpace(creds.Email)
	} else if err := validateEmail(creds.Email); err != nil {
		return Credentials{}, err
	}

	passwordPrompt := &survey.Password{
		Message: "Password:",
	}
	if err := survey.AskOne(passwordPrompt, &creds.Password, survey.WithValidator(survey.Required)); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// PromptForPasswordChange asks for the current password, the new one and
// its confirmation. Policy violations (too short, mismatch) are rejected
// inline by the prompts, so a returned PasswordChange is always valid
// and nothing is sent over the network until then.
func PromptForPasswordChange() (PasswordChange, error) {
	var change PasswordChange

	if err := survey.AskOne(&survey.Password{Message: "Current password:"}, &change.Current, survey.WithValidator(survey.Required)); err != nil {
		return PasswordChange{}, err
	}

	err := survey.AskOne(&survey.Password{
		Message: "New password:",
		Help:    fmt.Sprintf("At least %d characters", minPasswordLength),
	}, &change.New, survey.WithValidator(func(val interface{}) error {
		return validateNewPassword(val.(string))
	}))
	if err != nil {
		return PasswordChange{}, err
	}

	var confirm string
	err = survey.AskOne(&survey.Password{Message: "Confirm new password:"}, &confirm, survey.WithValidator(func(val interface{}) error {
		return validatePasswordConfirmation(change.New, val.(string))
	}))
	if err != nil {
		return PasswordChange{}, err
	}

	return change, nil
}

func validateEmail(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validateNewPassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func validatePasswordConfirmation(password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// SignupDetails holds the signup prompt's answers.
type SignupDetails struct {
	Name      string
	Email     string
	Password  string
	MasterKey string
}

// PromptForSignup collects everything account creation needs; values
// already supplied by flags skip their prompts.
func PromptForSignup(name, email, masterKey string) (SignupDetails, error) {
	details := SignupDetails{
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		MasterKey: strings.TrimSpace(masterKey),
	}

	if details.Name == "" {
		prompt := &survey.Input{Message: "Name:"}
		if err := survey.AskOne(prompt, &details.Name, survey.WithValidator(survey.Required)); err != nil {
			return SignupDetails{}, err
		}
	}

	if details.Email == "" {
		prompt := &survey.Input{Message: "Email:"}
		err := survey.AskOne(prompt, &details.Email, survey.WithValidator(func(val interface{}) error {
			return validateEmail(val.(string))
		}))
		if err != nil {
			return SignupDetails{}, err
		}
		details.Email = strings.TrimSpace(details.Email)
	} else if err := validateEmail(details.Email); err != nil {
		return SignupDetails{}, err
	}

	passwordPrompt := &survey.Password{Message: "Password:"}
	err := survey.AskOne(passwordPrompt, &details.Password, survey.WithValidator(func(val interface{}) error {
		return validateNewPassword(val.(string))
	}))
	if err != nil {
		return SignupDetails{}, err
	}

	var confirm string
	confirmPrompt := &survey.Password{Message: "Confirm password:"}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return SignupDetails{}, err
	}
	if err := validatePasswordConfirmation(details.Password, confirm); err != nil {
		return SignupDetails{}, err
	}

	if details.MasterKey == "" {
		keyPrompt := &survey.Password{Message: "Master admin key:"}
		if err := survey.AskOne(keyPrompt, &details.MasterKey, survey.WithValidator(survey.Required)); err != nil {
			return SignupDetails{}, err
		}
	}

	return details, nil
}

// PromptSelectChat lets the user pick a chat to resume from the history
// previews.
func PromptSelectChat(previews []chats.Preview) (int, error) {
	if len(previews) == 0 {
		return 0, fmt.Errorf("no chats to resume")
	}

	options := make([]string, len(previews))
	for i, p := range previews {
		options[i] = fmt.Sprintf("#%d  %s", p.Chat.ID, snippet(p.Question, 60))
	}

	var selected int
	prompt := &survey.Select{
		Message:  "Resume which chat?",
		Options:  options,
		PageSize: 10,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return 0, err
	}
	return previews[selected].Chat.ID, nil
}

// PromptSelectSubject walks the branch -> semester -> subject hierarchy
// with select prompts and returns the chosen subject.
func PromptSelectSubject(ctx context.Context, client *api.Client) (*api.Subject, error) {
	branches, err := client.Branches(ctx)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("no branch assigned to your account — contact your administrator")
	}

	branch := branches[0]
	if len(branches) > 1 {
		options := make([]string, len(branches))
		for i, b := range branches {
			options[i] = b.Name
		}
		var idx int
		if err := survey.AskOne(&survey.Select{Message: "Branch:", Options: options}, &idx); err != nil {
			return nil, err
		}
		branch = branches[idx]
	}

	semesters, err := client.Semesters(ctx, branch.ID)
	if err != nil {
		return nil, err
	}
	if len(semesters) == 0 {
		return nil, fmt.Errorf("branch %q has no semesters yet", branch.Name)
	}

	semesterOptions := make([]string, len(semesters))
	for i, s := range semesters {
		semesterOptions[i] = s.Name
	}
	var semesterIdx int
	if err := survey.AskOne(&survey.Select{Message: "Semester:", Options: semesterOptions, PageSize: 10}, &semesterIdx); err != nil {
		return nil, err
	}

	subjects, err := client.Subjects(ctx, semesters[semesterIdx].ID)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("semester %q has no subjects yet", semesters[semesterIdx].Name)
	}

	subjectOptions := make([]string, len(subjects))
	for i, s := range subjects {
		subjectOptions[i] = s.Name
	}
	var subjectIdx int
	if err := survey.AskOne(&survey.Select{Message: "Subject:", Options: subjectOptions, PageSize: 10}, &subjectIdx); err != nil {
		return nil, err
	}

	subject := subjects[subjectIdx]
	return &subject, nil
}
