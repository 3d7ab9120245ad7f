package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/view"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func signupForm() model.FormDefinition {
	return model.FormDefinition{
		ID:    "signup",
		Title: "Sign up",
		Fields: []model.Field{
			{Name: "email", Label: "Email", Type: "email", Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true, MinLength: 8},
			{Name: "confirm", Label: "Confirm", Type: "password", Match: "password"},
			{Name: "plan", Label: "Plan", Control: model.ControlSelect, Options: []string{"free", "pro"}},
			{Name: "bio", Label: "Bio", Control: model.ControlTextarea, MaxLength: 20},
			{Name: "legacy", Disabled: true},
		},
	}
}

func TestFillStoresAnswers(t *testing.T) {
	def := signupForm()
	form := view.New(def, "Send")
	driver := &stubDriver{
		inputs:    []string{"ada@example.com"},
		passwords: []string{"secret123", "secret123"},
		selectIdx: []int{2},
		textAreas: []string{"hello"},
		confirm:   []bool{true},
	}

	filler := New(WithPromptDriver(driver), WithConfirm("Submit?"))
	if err := filler.Fill(context.Background(), def, form); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	want := map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
		"confirm":  "secret123",
		"plan":     "pro",
		"bio":      "hello",
	}
	if diff := cmp.Diff(want, form.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	wantPrompts := []string{"Email *", "Password *", "Confirm", "Plan", "Bio"}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Sign up"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFillRepromptsInvalidAnswers(t *testing.T) {
	def := model.FormDefinition{
		ID:     "newsletter",
		Fields: []model.Field{{Name: "email", Label: "Email", Type: "email", Required: true}},
	}
	form := view.New(def, "Send")
	driver := &stubDriver{inputs: []string{"", "nope", "ada@example.com"}}

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), def, form); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got, _ := form.Value("email"); got != "ada@example.com" {
		t.Fatalf("expected final answer stored, got %q", got)
	}
	want := []string{
		"! This field is required",
		"! Please enter a valid email address",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFillGivesUpAfterMaxAttempts(t *testing.T) {
	def := model.FormDefinition{
		ID:     "contact",
		Fields: []model.Field{{Name: "name", Required: true}},
	}
	driver := &stubDriver{inputs: []string{"", " "}}

	err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Fill(context.Background(), def, view.New(def, "Send"))
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFillMatchUsesEarlierAnswers(t *testing.T) {
	def := signupForm()
	def.Fields = def.Fields[:3]
	form := view.New(def, "Send")
	driver := &stubDriver{
		inputs:    []string{"ada@example.com"},
		passwords: []string{"secret123", "other", "secret123"},
	}

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), def, form); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if diff := cmp.Diff([]string{"Sign up", "! The fields do not match"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFillOptionalSelectNone(t *testing.T) {
	def := model.FormDefinition{
		ID:     "appointment",
		Fields: []model.Field{{Name: "slot", Control: model.ControlSelect, Options: []string{"am", "pm"}}},
	}
	form := view.New(def, "Send")
	driver := &stubDriver{selectIdx: []int{0}}

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), def, form); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got, _ := form.Value("slot"); got != "" {
		t.Fatalf("expected empty selection, got %q", got)
	}
}

func TestFillDeclined(t *testing.T) {
	def := model.FormDefinition{ID: "contact", Fields: []model.Field{{Name: "name"}}}
	driver := &stubDriver{inputs: []string{"Ada"}, confirm: []bool{false}}

	err := New(WithPromptDriver(driver), WithConfirm("Submit?")).Fill(context.Background(), def, view.New(def, "Send"))
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestFillPropagatesDriverErrors(t *testing.T) {
	def := model.FormDefinition{ID: "contact", Fields: []model.Field{{Name: "name"}}}
	driver := &stubDriver{}

	err := New(WithPromptDriver(driver)).Fill(context.Background(), def, view.New(def, "Send"))
	if err == nil {
		t.Fatal("expected error when the driver has no answer")
	}
}

func TestReportPrintsErrorsAndPanels(t *testing.T) {
	def := model.FormDefinition{ID: "contact", Fields: []model.Field{{Name: "email", Label: "Email"}}}
	form := view.New(def, "Send")
	form.ShowFieldError("email", "Taken")
	form.ShowPanel(view.Panel{ID: "error-1", Kind: view.PanelError, Title: "Error", Message: "<strong>server</strong> &amp; busy"})
	form.ShowPanel(view.Panel{ID: "success-1", Kind: view.PanelSuccess, Title: "Sent", Message: "Thanks"})

	driver := &stubDriver{}
	filler := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "* ", ErrorPrefix: "! "}))
	if err := filler.Report(context.Background(), form.Snapshot()); err != nil {
		t.Fatalf("Report: %v", err)
	}

	want := []string{
		"! Email: Taken",
		"! Error server & busy",
		"* Sent Thanks",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}
