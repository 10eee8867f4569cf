package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignType selects the game mechanic and the configurator sub-view of a campaign.
type CampaignType string

const (
	TypeQuiz    CampaignType = "quiz"
	TypeSurvey  CampaignType = "survey"
	TypeContest CampaignType = "contest"
	TypeForm    CampaignType = "form"
	TypeWheel   CampaignType = "wheel"
	TypeScratch CampaignType = "scratch"
	TypeMemory  CampaignType = "memory"
	TypePuzzle  CampaignType = "puzzle"
	TypeDice    CampaignType = "dice"
	TypeTarget  CampaignType = "target"
	TypeJackpot CampaignType = "jackpot"
)

// CampaignTypes lists every supported type in display order.
var CampaignTypes = []CampaignType{
	TypeQuiz, TypeSurvey, TypeContest, TypeForm,
	TypeWheel, TypeScratch, TypeMemory, TypePuzzle, TypeDice, TypeTarget, TypeJackpot,
}

// Valid reports whether t is one of the known campaign types.
func (t CampaignType) Valid() bool {
	for _, v := range CampaignTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsGame reports whether the type is played through a game widget.
func (t CampaignType) IsGame() bool {
	switch t {
	case TypeWheel, TypeScratch, TypeMemory, TypePuzzle, TypeDice, TypeTarget, TypeJackpot:
		return true
	}
	return false
}

// UsesQuestions reports whether the type is built from questions (quiz branch).
func (t CampaignType) UsesQuestions() bool {
	return t == TypeQuiz || t == TypeSurvey || t == TypeContest
}

// CampaignStatus is the scheduling state of a campaign.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusScheduled CampaignStatus = "scheduled"
	StatusActive    CampaignStatus = "active"
	StatusEnded     CampaignStatus = "ended"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusActive, StatusEnded:
		return true
	}
	return false
}

// Colors is the palette shared by every screen and widget of a campaign.
type Colors struct {
	Button             string `json:"button"`
	ButtonText         string `json:"buttonText"`
	Text               string `json:"text"`
	Border             string `json:"border"`
	QuestionBackground string `json:"questionBackground"`
	ProgressBar        string `json:"progressBar"`
	Background         string `json:"background"`
}

// Typography holds font sizes and weights.
type Typography struct {
	TitleSize   int    `json:"titleSize"`
	TitleWeight string `json:"titleWeight"`
	BodySize    int    `json:"bodySize"`
	BodyWeight  string `json:"bodyWeight"`
}

// Style holds container and button geometry.
type Style struct {
	ContainerRadius  int        `json:"containerRadius"`
	ButtonRadius     int        `json:"buttonRadius"`
	ContainerOpacity float64    `json:"containerOpacity"`
	Spacing          int        `json:"spacing"`
	Shadows          bool       `json:"shadows"`
	Borders          bool       `json:"borders"`
	FontFamily       string     `json:"fontFamily"`
	Typography       Typography `json:"typography"`
}

// ContrastBackground is an optional backdrop drawn behind screen text.
type ContrastBackground struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Padding int     `json:"padding"`
	Radius  int     `json:"radius"`
}

// Screen is the text and display toggles of one step of the public flow.
type Screen struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	ButtonText      string              `json:"buttonText"`
	ShowTitle       bool                `json:"showTitle"`
	ShowDescription bool                `json:"showDescription"`
	ShowButton      bool                `json:"showButton"`
	Contrast        *ContrastBackground `json:"contrastBackground,omitempty"`
}

// Screens groups the welcome, game and end screens.
type Screens struct {
	Welcome Screen `json:"welcome"`
	Game    Screen `json:"game"`
	End     Screen `json:"end"`
}

// Question is a quiz or survey question owned by a campaign.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer *string  `json:"correctAnswer,omitempty"`
}

// FormField is one input of the participation form.
type FormField struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// Campaign is the root entity edited in the dashboard and served on the public page.
// Nested slices are held by pointer, slice or map so that a single-path update can
// reuse every untouched slice.
type Campaign struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	PublicURL       string         `json:"public_url"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Type            CampaignType   `json:"type"`
	Status          CampaignStatus `json:"status"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	StartTime       string         `json:"start_time"`
	EndTime         string         `json:"end_time"`
	Colors          *Colors        `json:"colors"`
	Style           *Style         `json:"style"`
	BackgroundImage string         `json:"background_image"`
	Screens         *Screens       `json:"screens"`
	Questions       []Question     `json:"questions"`
	Fields          []FormField    `json:"fields"`
	GameConfig      GameConfigs    `json:"game_config"`
	Participants    int            `json:"participants"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// LiveGameConfig returns the configuration matching the campaign type, or nil.
func (c *Campaign) LiveGameConfig() GameConfig {
	if c.GameConfig == nil {
		return nil
	}
	return c.GameConfig[c.Type]
}

// CampaignSummary is the list-view projection of a campaign.
type CampaignSummary struct {
	ID           uuid.UUID      `json:"id"`
	PublicURL    string         `json:"public_url"`
	Name         string         `json:"name"`
	Type         CampaignType   `json:"type"`
	Status       CampaignStatus `json:"status"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	Participants int            `json:"participants"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Summary projects the campaign for list views.
func (c *Campaign) Summary() CampaignSummary {
	return CampaignSummary{
		ID:           c.ID,
		PublicURL:    c.PublicURL,
		Name:         c.Name,
		Type:         c.Type,
		Status:       c.Status,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Participants: c.Participants,
		UpdatedAt:    c.UpdatedAt,
	}
}
