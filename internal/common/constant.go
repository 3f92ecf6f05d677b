package common

// AdminTokenHeaderName is the HTTP header that carries the administrative
// credential for the user-management endpoints.
const AdminTokenHeaderName = "X-Admin-Token"
