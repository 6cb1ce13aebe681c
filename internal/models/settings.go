package models

import (
	"slices"

	"github.com/samber/lo"
)

// Store keys of the persisted settings, in the order they are written.
const (
	KeyOpenAIAPIKey   = "openaiApiKey"
	KeyUseOllama      = "useOllama"
	KeyUseCloudAudio  = "useCloudAudio"
	KeyUseCloudOCR    = "useCloudOcr"
	KeyOllamaURL      = "ollamaUrl"
	KeyAIModel        = "aiModel"
	KeyInstalledPipes = "installedPipes"
	KeyUserID         = "userId"
	KeyCustomPrompt   = "customPrompt"
	KeyDevMode        = "devMode"
)

// SettingKeys lists every persisted key. IsLoading is derived and never stored.
var SettingKeys = []string{
	KeyOpenAIAPIKey,
	KeyUseOllama,
	KeyUseCloudAudio,
	KeyUseCloudOCR,
	KeyOllamaURL,
	KeyAIModel,
	KeyInstalledPipes,
	KeyUserID,
	KeyCustomPrompt,
	KeyDevMode,
}

const (
	DefaultOllamaURL = "http://localhost:11434"
	DefaultAIModel   = "gpt-4o"
)

// Settings is the complete snapshot exposed to the UI.
type Settings struct {
	OpenAIAPIKey   string   `json:"openaiApiKey"`
	UseOllama      bool     `json:"useOllama"`
	OllamaURL      string   `json:"ollamaUrl"`
	UseCloudAudio  bool     `json:"useCloudAudio"`
	UseCloudOCR    bool     `json:"useCloudOcr"`
	AIModel        string   `json:"aiModel"`
	InstalledPipes []string `json:"installedPipes"`
	UserID         string   `json:"userId"`
	CustomPrompt   string   `json:"customPrompt"`
	DevMode        bool     `json:"devMode"`
	IsLoading      bool     `json:"isLoading"`
}

// DefaultSettings returns the snapshot used before anything has been loaded.
func DefaultSettings() Settings {
	return Settings{
		OllamaURL:      DefaultOllamaURL,
		AIModel:        DefaultAIModel,
		InstalledPipes: []string{},
		IsLoading:      true,
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.InstalledPipes = clonePipes(s.InstalledPipes)
	return out
}

// Equal reports whether the persisted fields of s and o match.
func (s Settings) Equal(o Settings) bool {
	return s.OpenAIAPIKey == o.OpenAIAPIKey &&
		s.UseOllama == o.UseOllama &&
		s.OllamaURL == o.OllamaURL &&
		s.UseCloudAudio == o.UseCloudAudio &&
		s.UseCloudOCR == o.UseCloudOCR &&
		s.AIModel == o.AIModel &&
		slices.Equal(s.InstalledPipes, o.InstalledPipes) &&
		s.UserID == o.UserID &&
		s.CustomPrompt == o.CustomPrompt &&
		s.DevMode == o.DevMode
}

// SettingsPatch carries a sparse set of overrides. A nil field is left alone.
type SettingsPatch struct {
	OpenAIAPIKey   *string   `json:"openaiApiKey,omitempty"`
	UseOllama      *bool     `json:"useOllama,omitempty"`
	OllamaURL      *string   `json:"ollamaUrl,omitempty"`
	UseCloudAudio  *bool     `json:"useCloudAudio,omitempty"`
	UseCloudOCR    *bool     `json:"useCloudOcr,omitempty"`
	AIModel        *string   `json:"aiModel,omitempty"`
	InstalledPipes *[]string `json:"installedPipes,omitempty"`
	UserID         *string   `json:"userId,omitempty"`
	CustomPrompt   *string   `json:"customPrompt,omitempty"`
	DevMode        *bool     `json:"devMode,omitempty"`
}

// Apply merges p over s and returns the result. s is not modified and
// IsLoading is carried over unchanged.
func (s Settings) Apply(p SettingsPatch) Settings {
	out := s.Clone()
	out.OpenAIAPIKey = lo.FromPtrOr(p.OpenAIAPIKey, s.OpenAIAPIKey)
	out.UseOllama = lo.FromPtrOr(p.UseOllama, s.UseOllama)
	out.OllamaURL = lo.FromPtrOr(p.OllamaURL, s.OllamaURL)
	out.UseCloudAudio = lo.FromPtrOr(p.UseCloudAudio, s.UseCloudAudio)
	out.UseCloudOCR = lo.FromPtrOr(p.UseCloudOCR, s.UseCloudOCR)
	out.AIModel = lo.FromPtrOr(p.AIModel, s.AIModel)
	out.UserID = lo.FromPtrOr(p.UserID, s.UserID)
	out.CustomPrompt = lo.FromPtrOr(p.CustomPrompt, s.CustomPrompt)
	out.DevMode = lo.FromPtrOr(p.DevMode, s.DevMode)
	if p.InstalledPipes != nil {
		out.InstalledPipes = clonePipes(*p.InstalledPipes)
	}
	return out
}

// Empty reports whether the patch overrides nothing.
func (p SettingsPatch) Empty() bool {
	return p == (SettingsPatch{})
}

func clonePipes(pipes []string) []string {
	if pipes == nil {
		return []string{}
	}
	return slices.Clone(pipes)
}
