package api

// Loading is a blocking progress indicator shown while a request is in flight
type Loading interface {
	Show(message string)
	Hide()
}

// Notifier surfaces short messages to the user
type Notifier interface {
	Success(message string)
	Error(message string)
	Warning(message string)
	Info(message string)
}

// Navigator moves the user to another screen, e.g. the login page
type Navigator interface {
	Redirect(target string)
}

type nopLoading struct{}

func (nopLoading) Show(string) {}
func (nopLoading) Hide()       {}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Warning(string) {}
func (nopNotifier) Info(string)    {}

type nopNavigator struct{}

func (nopNavigator) Redirect(string) {}
