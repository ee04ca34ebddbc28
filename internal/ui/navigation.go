package ui

// Link is one entry in the site navigation.
type Link struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Menu is the /navigation response body.
type Menu struct {
	Navigation []Link `json:"navigation"`
}

var baseLinks = []Link{
	{Name: "Home", Path: "/"},
	{Name: "Game", Path: "/game/index.html"},
	{Name: "Player", Path: "/game/player.html"},
	{Name: "Reference", Path: "/reference/index.html"},
}

var dmLinks = []Link{
	{Name: "Game Players", Path: "/game/players.html"},
	{Name: "Game Monsters", Path: "/game/monsters.html"},
	{Name: "Game Items", Path: "/game/items.html"},
	{Name: "Game Locations", Path: "/game/locations.html"},
	{Name: "Game Events", Path: "/game/events.html"},
	{Name: "Game Quests", Path: "/game/quests.html"},
	{Name: "Game NPCs", Path: "/game/npcs.html"},
	{Name: "Game Settings", Path: "/game/settings.html"},
}

// Navigation returns the menu for a caller. Dungeon masters get the game
// management pages appended after the common links.
func Navigation(isDM bool) Menu {
	links := make([]Link, 0, len(baseLinks)+len(dmLinks))
	links = append(links, baseLinks...)
	if isDM {
		links = append(links, dmLinks...)
	}
	return Menu{Navigation: links}
}
