package app

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

// Settings keys persisted between runs.
const (
	KeyUseJumpbox       = "global.use_jumpbox"
	KeyJumpboxHost      = "global.jumpbox_host"
	KeyJumpboxUser      = "global.jumpbox_user"
	KeyJumpboxPromptEnd = "global.jumpbox_prompt_end"
)

// Settings is the persisted key/value store for operator answers. The
// jump-box password is deliberately not part of it.
type Settings struct {
	v *viper.Viper
}

// OpenSettings loads the settings file, creating it with defaults on the
// first run.
func OpenSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault(KeyUseJumpbox, false)
	v.SetDefault(KeyJumpboxHost, "")
	v.SetDefault(KeyJumpboxUser, "")
	v.SetDefault(KeyJumpboxPromptEnd, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err := v.WriteConfigAs(path); err != nil {
			return nil, err
		}
	}
	return &Settings{v: v}, nil
}

func (s *Settings) Get(key string) string {
	return s.v.GetString(key)
}

func (s *Settings) GetBool(key string) bool {
	return s.v.GetBool(key)
}

// Update sets key and writes the store back to disk.
func (s *Settings) Update(key, value string) error {
	s.v.Set(key, value)
	return s.v.WriteConfig()
}
