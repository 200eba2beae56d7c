package federation

import "fmt"

// Theme is a widget colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) validate() error {
	switch t {
	case "", ThemeDark, ThemeLight:
		return nil
	}
	return fmt.Errorf("unknown theme %q", t)
}

// AnalyticsProps configures the analytics widget.
type AnalyticsProps struct {
	Title       string `json:"title,omitempty"`
	ShowRefresh bool   `json:"showRefresh,omitempty"`
	Theme       Theme  `json:"theme,omitempty"`
	Compact     bool   `json:"compact,omitempty"`
}

// Validate implements Validator.
func (p AnalyticsProps) Validate() error {
	return p.Theme.validate()
}

// NotificationProps configures the notification widget.
type NotificationProps struct {
	Title        string         `json:"title,omitempty"`
	MaxItems     int            `json:"maxItems,omitempty"`
	ShowClearAll bool           `json:"showClearAll,omitempty"`
	Theme        Theme          `json:"theme,omitempty"`
	Initial      []Notification `json:"initialNotifications,omitempty"`
}

// Notification is a seeded entry of the notification widget.
type Notification struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
	Read    bool   `json:"read"`
}

// Validate implements Validator.
func (p NotificationProps) Validate() error {
	if p.MaxItems < 0 {
		return fmt.Errorf("maxItems must not be negative, got %d", p.MaxItems)
	}
	for _, n := range p.Initial {
		switch n.Type {
		case "success", "warning", "info", "error":
		default:
			return fmt.Errorf("notification %d: unknown type %q", n.ID, n.Type)
		}
	}
	return p.Theme.validate()
}

// ChatPosition is the corner a floating chat widget docks to.
type ChatPosition string

const (
	BottomRight ChatPosition = "bottom-right"
	BottomLeft  ChatPosition = "bottom-left"
)

// ChatProps configures the chat widget.
type ChatProps struct {
	InitialOpen     bool         `json:"initialOpen"`
	BotName         string       `json:"botName,omitempty"`
	BotIcon         string       `json:"botIcon,omitempty"`
	Placeholder     string       `json:"placeholder,omitempty"`
	WelcomeMessage  string       `json:"welcomeMessage,omitempty"`
	InitialMessage  string       `json:"initialMessage,omitempty"`
	Theme           Theme        `json:"theme,omitempty"`
	Position        ChatPosition `json:"position,omitempty"`
	CustomResponses []string     `json:"customResponses,omitempty"`
}

// Validate implements Validator.
func (p ChatProps) Validate() error {
	switch p.Position {
	case "", BottomRight, BottomLeft:
	default:
		return fmt.Errorf("unknown position %q", p.Position)
	}
	return p.Theme.validate()
}
