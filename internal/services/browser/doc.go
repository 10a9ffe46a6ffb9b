// Package browser defines the automation capability the portal driver
// needs and provides the Chrome-backed implementation. The driver never
// sees chromedp; any backend satisfying Automator is substitutable.
package browser
