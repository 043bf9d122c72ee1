// Package journal keeps a small on-disk record of what setup and scaffold
// changed: php.ini backups, reconcile plans, generated projects.
//
// Entries are individual JSON files in the state directory
// ($XDG_STATE_HOME/devboot or %LOCALAPPDATA%\devboot\journal). The journal
// is what `devboot ini restore` uses to find the most recent backup.
package journal
