// Package extract classifies season, episode, quality, and audio fragments
// out of media file names and captions using ordered regex pattern lists.
package extract
