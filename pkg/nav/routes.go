package nav

// Route paths shared with the external router.
const (
	JobListing     = "/job-listing"
	MyWork         = "/my-work"
	PostJob        = "/post-job"
	WorkManagement = "/work-management"
	Verification   = "/verification"
	Login          = "/login"

	// LogoutEndpoint is the session-termination API path.
	LogoutEndpoint = "/api/logout"
)
