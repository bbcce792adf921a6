package common

// AccessTokenHeaderName is the metadata key used to carry the bearer access
// token on inbound requests.
const AccessTokenHeaderName = "access_token"
