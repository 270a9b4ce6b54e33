// internal/catalog/category.go
package catalog

import "fmt"

// Category is a genre label from the closed category registry. The zero value
// is not a valid category; obtain values through ResolveCategory.
type Category struct {
	label string
}

var categoryLabels = []string{
	"Action/Adventure fiction",
	"Children's fiction",
	"Classic fiction",
	"Contemporary fiction",
	"Fantasy",
	"Dark fantasy",
	"Fairy tales",
	"Folktales",
	"Heroic fantasy",
	"High fantasy",
	"Historical fantasy",
	"Low fantasy",
	"Magical realism",
	"Mythic fantasy",
	"Urban fantasy",
	"Graphic novel",
	"Historical fiction",
	"Horror",
	"Body horror",
	"Comedy horror",
	"Gothic horror",
	"Lovecraftian/Cosmic horror",
	"Paranormal horror",
	"Post-apocalyptic horror",
	"Psychological horror",
	"Quiet horror",
	"Slasher",
	"LGBTQ+",
	"Literary fiction",
	"Mystery",
	"Caper",
	"Cozy mystery",
	"Gumshoe/Detective mystery",
	"Historical mystery",
	"Howdunnits",
	"Locked room mystery",
	"Noir",
	"Procedural/Hard-boiled mystery",
	"Supernatural mystery",
	"New adult",
	"Romance",
	"Contemporary romance",
	"Dark romance",
	"Erotic romance",
	"Fantasy romance (Romantasy)",
	"Gothic romance",
	"Historical romance",
	"Paranormal romance",
	"Regency",
	"Romantic comedy",
	"Romantic suspense",
	"Sci-fi romance",
	"Satire",
	"Science fiction",
	"Apocalyptic sci-fi",
	"Colonization sci-fi",
	"Hard sci-fi",
	"Military sci-fi",
	"Mind uploading sci-fi",
	"Parallel world sci-fi",
	"Soft sci-fi",
	"Space opera",
	"Space western",
	"Steampunk",
	"Short story",
	"Thriller",
	"Action thriller",
	"Conspiracy thriller",
	"Disaster thriller",
	"Espionage thriller",
	"Forensic thriller",
	"Historical thriller",
	"Legal thriller",
	"Paranormal thriller",
	"Psychological thriller",
	"Religious thriller",
	"Western",
	"Women's fiction",
	"Young adult",
	"Art & photography",
	"Autobiography/Memoir",
	"Biography",
	"Essays",
	"Food & drink",
	"History",
	"How-To/Guides",
	"Humanities & social sciences",
	"Humor",
	"Parenting",
	"Philosophy",
	"Religion & spirituality",
	"Science & technology",
	"Self-help",
	"Travel",
	"True crime",
}

var categories = newRegistry(categoryLabels, func(label string) Category {
	return Category{label: label}
})

// ResolveCategory returns the canonical category whose label matches
// candidate case-insensitively.
func ResolveCategory(candidate string) (Category, error) {
	c, ok := categories.lookup(candidate)
	if !ok {
		return Category{}, fmt.Errorf("%w %q", ErrInvalidCategory, candidate)
	}
	return c, nil
}

// MustCategory is like ResolveCategory but panics on an unknown label.
// It is intended for literals known at compile time.
func MustCategory(label string) Category {
	c, err := ResolveCategory(label)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns every registered category in declaration order.
func Categories() []Category {
	return categories.all()
}

func (c Category) String() string { return c.label }

func (c Category) IsZero() bool { return c.label == "" }

func (c Category) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCategory)
	}
	return []byte(c.label), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	resolved, err := ResolveCategory(string(text))
	if err != nil {
		return err
	}
	*c = resolved
	return nil
}
