// Package develop turns raw photo files into developed images by driving
// an external raw converter with the resolved per-group settings.
package develop
