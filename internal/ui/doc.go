// Package ui renders git progress for people watching the console.
//
// ConsoleCommandEventLogger receives execshell lifecycle events and logs the
// readable form of each command, while the structured executor logs keep the
// full argument lists.
package ui
