package service

const (
	RouteHome      = "/"
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
)

type Verdict int

const (
	// VerdictWait means the session is still bootstrapping; render a placeholder.
	VerdictWait Verdict = iota
	VerdictAllow
	VerdictRedirect
)

type Decision struct {
	Verdict Verdict
	// Target is set for redirects.
	Target string
	// Next is the route to resume after logging in.
	Next string
}

// MemberGuard lets any logged-in session through.
func MemberGuard(st SessionState, intended string) Decision {
	if st.Loading {
		return Decision{Verdict: VerdictWait}
	}
	if !st.Authenticated() {
		return Decision{Verdict: VerdictRedirect, Target: RouteLogin, Next: intended}
	}
	return Decision{Verdict: VerdictAllow}
}

// AdminGuard requires an admin. A logged-in non-admin goes back to the
// dashboard, not to the login view.
func AdminGuard(st SessionState, intended string) Decision {
	if st.Loading {
		return Decision{Verdict: VerdictWait}
	}
	if !st.Authenticated() {
		return Decision{Verdict: VerdictRedirect, Target: RouteLogin, Next: intended}
	}
	if !st.User.IsAdmin() {
		return Decision{Verdict: VerdictRedirect, Target: RouteDashboard}
	}
	return Decision{Verdict: VerdictAllow}
}
