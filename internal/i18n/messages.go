package i18n

// Message ids of the operator facing strings. The English text doubles as the id.
const (
	DiskPrompt           = "Drive to install to: "
	HostnamePrompt       = "Hostname for new system: "
	UsernamePrompt       = "Username for new user: "
	PasswordPrompt       = "Password for new user: "
	RepeatPasswordPrompt = "Repeat password: "
	PasswordMismatch     = "Passwords do not match, try again."
	EmptyAnswer          = "A value is required."
	OverwritePrompt      = "%s is not empty, do you want to overwrite?"
	Aborting             = "Aborting!"
	Complete             = "Installation complete, the new system is mounted at %s."
	StepHeader           = " -- %s -- "
)
