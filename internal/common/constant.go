// Package common contains shared constants, sentinel errors and small
// helpers used across growkeeper components.
package common

// AppName is used as the prefix for environment variables and as the
// default database file name.
const AppName = "growkeeper"

// EnvPrefix is prepended to every environment variable the app reads.
const EnvPrefix = "GROWKEEPER_"
