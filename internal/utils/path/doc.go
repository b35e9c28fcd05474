// Package pathutils expands user home shortcuts in paths supplied on the command line or in configuration.
package pathutils
