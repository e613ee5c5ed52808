// Package encode assembles developed frames into timelapse clips by
// driving ffmpeg with the concat demuxer.
package encode
