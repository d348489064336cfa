package app

import "fmt"

// Jumpbox is the resolved jump-box profile for one run. Host, Username and
// PromptEnd come from the settings store; Password lives only in memory.
type Jumpbox struct {
	Host      string
	Username  string
	Password  string
	PromptEnd string
}

// ResolveJumpbox reads the persisted jump-box settings, prompting for any
// missing value and writing the answer back. Returns nil when the jump box
// is disabled. The password is prompted on every run and never persisted.
func (a *App) ResolveJumpbox() (*Jumpbox, error) {
	if !a.Settings.GetBool(KeyUseJumpbox) {
		return nil, nil
	}

	host := a.Settings.Get(KeyJumpboxHost)
	if host == "" {
		var err error
		host, err = a.PromptLine("Enter the HOSTNAME or IP for the jumpbox")
		if err != nil {
			return nil, err
		}
		if err := a.Settings.Update(KeyJumpboxHost, host); err != nil {
			return nil, err
		}
	}

	user := a.Settings.Get(KeyJumpboxUser)
	if user == "" {
		var err error
		user, err = a.PromptLine(fmt.Sprintf("JUMPBOX: Enter the USERNAME for %s", host))
		if err != nil {
			return nil, err
		}
		if err := a.Settings.Update(KeyJumpboxUser, user); err != nil {
			return nil, err
		}
	}

	password, err := a.PromptPassword(fmt.Sprintf("JUMPBOX: Enter the PASSWORD for %s", user))
	if err != nil {
		return nil, err
	}

	ending := a.Settings.Get(KeyJumpboxPromptEnd)
	if ending == "" {
		ending, err = a.PromptLine("Enter the last character of the jumpbox CLI prompt")
		if err != nil {
			return nil, err
		}
		if err := a.Settings.Update(KeyJumpboxPromptEnd, ending); err != nil {
			return nil, err
		}
	}

	return &Jumpbox{
		Host:      host,
		Username:  user,
		Password:  password,
		PromptEnd: ending,
	}, nil
}
