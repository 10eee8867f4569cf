// Package editor holds the dashboard editor: the tab set of each campaign type, the
// configurator panels and the live preview.
package editor

import (
	"errors"
	"fmt"

	"github.com/promogame/backend/internal/models"
)

// Tab is one named view of the editor.
type Tab string

const (
	TabGeneral   Tab = "general"
	TabQuestions Tab = "questions"
	TabFields    Tab = "fields"
	TabContent   Tab = "content"
	TabDesign    Tab = "design"
	TabScreens   Tab = "screens"
	TabMobile    Tab = "mobile"
	TabSettings  Tab = "settings"
)

// ErrUnknownTab is returned when a tab is not offered for the campaign type.
var ErrUnknownTab = errors.New("tab not available")

// Tabs returns the tabs offered for campaigns of type t, in display order.
func Tabs(t models.CampaignType) []Tab {
	second := TabContent
	switch {
	case t.UsesQuestions():
		second = TabQuestions
	case t == models.TypeForm:
		second = TabFields
	}
	return []Tab{TabGeneral, second, TabDesign, TabScreens, TabMobile, TabSettings}
}

// PanelFor returns the configurator panel a tab renders. The mobile tab shows the design
// panel next to the mobile preview.
func PanelFor(tab Tab) Panel {
	switch tab {
	case TabQuestions, TabFields, TabContent:
		return PanelContent
	case TabDesign, TabMobile:
		return PanelDesign
	case TabScreens:
		return PanelScreens
	case TabSettings:
		return PanelSettings
	}
	return PanelGeneral
}

// Shell is the editor state: the campaign being edited and the active tab.
type Shell struct {
	Campaign *models.Campaign `json:"campaign"`
	Active   Tab              `json:"active"`
	Tabs     []Tab            `json:"tabs"`
}

// NewShell opens the editor on the general tab.
func NewShell(c *models.Campaign) *Shell {
	return &Shell{Campaign: c, Active: TabGeneral, Tabs: Tabs(c.Type)}
}

func (s *Shell) has(tab Tab) bool {
	for _, t := range s.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// Select switches the active tab.
func (s *Shell) Select(tab Tab) error {
	if !s.has(tab) {
		return fmt.Errorf("%w: %s for %s", ErrUnknownTab, tab, s.Campaign.Type)
	}
	s.Active = tab
	return nil
}

// Apply runs a mutation against the current campaign. A type change re-derives the tab list
// and returns to the general tab when the active one is gone.
func (s *Shell) Apply(m Mutation) error {
	next, err := Apply(s.Campaign, m)
	if err != nil {
		return err
	}
	s.Campaign = next
	s.Tabs = Tabs(next.Type)
	if !s.has(s.Active) {
		s.Active = TabGeneral
	}
	return nil
}

// Preview derives the preview of the current campaign.
func (s *Shell) Preview() Preview {
	return Derive(s.Campaign)
}
