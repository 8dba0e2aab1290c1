package portal

// Settings is the live parameter set behind the panel. The composition root
// owns the only instance; panel callbacks each write one field of it.
type Settings struct {
	PortalColorStart string
	PortalColorEnd   string
	ClearColor       string
	FireflySize      float32
}

func DefaultSettings() *Settings {
	return &Settings{
		PortalColorStart: "#e2f9a4",
		PortalColorEnd:   "#0ca6e9",
		ClearColor:       "#303030",
		FireflySize:      30,
	}
}
