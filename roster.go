package main

import (
	"context"
	"fmt"
	"strings"
)

// Category partitions the roster by which storage folder a photo came
// from. It only exists to build the photo path and pick reply pronouns.
type Category int

const (
	CategoryMale Category = iota
	CategoryFemale
)

func (c Category) Folder() string {
	if c == CategoryMale {
		return "male"
	}
	return "female"
}

// Pronouns returns the subject and object pronoun used in replies.
func (c Category) Pronouns() (string, string) {
	if c == CategoryMale {
		return "He", "him"
	}
	return "She", "her"
}

// Identity is one guessable person.
type Identity struct {
	Name     string
	Category Category
}

// Roster is the immutable catalog of guessable identities, assembled
// once at startup and never mutated afterwards.
type Roster struct {
	people []Identity
}

func (r *Roster) Len() int {
	return len(r.people)
}

// loadRoster lists both category folders and builds the roster. Either
// listing failing is fatal; the bot cannot serve without a full roster.
func loadRoster(ctx context.Context, assets AssetSource) (*Roster, error) {
	var people []Identity

	for _, category := range []Category{CategoryMale, CategoryFemale} {
		names, err := assets.ListCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("listing %s folder: %w", category.Folder(), err)
		}

		for _, name := range names {
			people = append(people, Identity{
				Name:     strings.TrimSuffix(name, ".jpg"),
				Category: category,
			})
		}
	}

	return &Roster{people: people}, nil
}
