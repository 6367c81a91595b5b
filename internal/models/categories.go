package models

// Categories are the post categories accepted by the blog
var Categories = []string{
	"Locations", "Cities", "Dungeons", "Characters", "Classes",
	"Professions", "Events", "Guides", "Lore", "Races",
}

// IsValidCategory reports whether name is one of Categories
func IsValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
