package entity

import "strings"

// Song is a track pulled from the streaming catalog. The Id is the
// catalog track id and is the value all guess comparisons run against.
type Song struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ImageUrl    string   `json:"image_url"`
	ExternalUrl string   `json:"external_url"`
}

// HasArtist reports whether the given name matches one of the song's
// artists, ignoring case and surrounding whitespace.
func (s Song) HasArtist(name string) bool {
	name = strings.TrimSpace(name)
	for _, a := range s.Artists {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// Matches reports whether a submitted guess identifies this song, by
// track id or by title, ignoring case and surrounding whitespace.
func (s Song) Matches(guess string) bool {
	guess = strings.TrimSpace(guess)
	return guess == s.Id || strings.EqualFold(guess, s.Name)
}
