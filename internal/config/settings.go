// Package config defines the persisted user settings: the schema, the
// defaults, per-key validation, and the TOML-backed store.
package config

// Settings is the flat, explicitly enumerated configuration schema. Every
// value is validated at the store boundary before it can reach a pipeline
// run.
type Settings struct {
	Model          string `toml:"whisper_model" json:"whisperModel"`
	SourceLanguage string `toml:"source_language" json:"sourceLanguage"`
	TargetLanguage string `toml:"target_language" json:"targetLanguage"`

	FontFamily      string `toml:"font_family" json:"fontFamily"`
	FontSize        int    `toml:"font_size" json:"fontSize"`
	FontColor       string `toml:"font_color" json:"fontColor"`
	OutlineColor    string `toml:"outline_color" json:"outlineColor"`
	BackgroundColor string `toml:"background_color" json:"backgroundColor"`
	Position        string `toml:"position" json:"position"`
	Uppercase       bool   `toml:"uppercase" json:"uppercase"`

	VideoQuality int    `toml:"video_quality" json:"videoQuality"`
	VideoPreset  string `toml:"video_preset" json:"videoPreset"`

	OutputDir string `toml:"output_dir" json:"outputDir"`
	ModelDir  string `toml:"model_dir" json:"modelDir"`

	TranslateAPIBase string `toml:"translate_api_base" json:"translateApiBase"`
	TranslateAPIKey  string `toml:"translate_api_key" json:"-"`
	TranslateModel   string `toml:"translate_model" json:"translateModel"`

	LogLevel string `toml:"log_level" json:"logLevel"`
}

// Patch carries partial settings updates; nil fields are left unchanged.
type Patch struct {
	Model          *string
	SourceLanguage *string
	TargetLanguage *string

	FontFamily      *string
	FontSize        *int
	FontColor       *string
	OutlineColor    *string
	BackgroundColor *string
	Position        *string
	Uppercase       *bool

	VideoQuality *int
	VideoPreset  *string

	OutputDir *string
	ModelDir  *string

	TranslateAPIBase *string
	TranslateAPIKey  *string
	TranslateModel   *string

	LogLevel *string
}

// apply merges non-nil patch fields into a settings copy.
func (p Patch) apply(s Settings) Settings {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&s.Model, p.Model)
	setString(&s.SourceLanguage, p.SourceLanguage)
	setString(&s.TargetLanguage, p.TargetLanguage)
	setString(&s.FontFamily, p.FontFamily)
	setInt(&s.FontSize, p.FontSize)
	setString(&s.FontColor, p.FontColor)
	setString(&s.OutlineColor, p.OutlineColor)
	setString(&s.BackgroundColor, p.BackgroundColor)
	setString(&s.Position, p.Position)
	if p.Uppercase != nil {
		s.Uppercase = *p.Uppercase
	}
	setInt(&s.VideoQuality, p.VideoQuality)
	setString(&s.VideoPreset, p.VideoPreset)
	setString(&s.OutputDir, p.OutputDir)
	setString(&s.ModelDir, p.ModelDir)
	setString(&s.TranslateAPIBase, p.TranslateAPIBase)
	setString(&s.TranslateAPIKey, p.TranslateAPIKey)
	setString(&s.TranslateModel, p.TranslateModel)
	setString(&s.LogLevel, p.LogLevel)
	return s
}
