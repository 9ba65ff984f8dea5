package ports

// AuthHandler is invoked by the orchestrator on authorization failures.
// Calls are fire-and-forget; the request still fails with a terminal error.
type AuthHandler interface {
	OnUnauthorized()
	OnForbidden()
}

// AuthFuncs adapts two optional functions to AuthHandler.
type AuthFuncs struct {
	Unauthorized func()
	Forbidden    func()
}

func (a AuthFuncs) OnUnauthorized() {
	if a.Unauthorized != nil {
		a.Unauthorized()
	}
}

func (a AuthFuncs) OnForbidden() {
	if a.Forbidden != nil {
		a.Forbidden()
	}
}

// ContextSource returns the active project identifier, or false when none is selected.
type ContextSource func() (string, bool)
