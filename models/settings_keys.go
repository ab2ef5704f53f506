package models

// ProxyEnabledKey is the database setting key used to store the persisted
// proxy toggle flag. Absent row means disabled (first-install default).
const ProxyEnabledKey = "proxy_enabled"
