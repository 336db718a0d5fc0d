package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_contact", "First Contact", "Destroy your first asteroid"},
	{"rock_breaker", "Rock Breaker", "Destroy 100 asteroids total"},
	{"belt_cleaner", "Belt Cleaner", "Destroy 1000 asteroids total"},
	{"marksman", "Marksman", "Destroy 25 asteroids in a single run"},
	{"high_roller", "High Roller", "Score 500 in a single run"},
	{"regular", "Regular", "Complete 10 runs"},
	{"veteran", "Veteran", "Reach level 10"},
	{"elite", "Elite", "Reach level 25"},
	{"legend", "Legend", "Reach level 50"},
	{"drifter", "Drifter", "Fly for 1 hour total"},
}

// CheckAchievements checks if any new achievements should be unlocked after a
// run. Returns the newly unlocked definitions.
func CheckAchievements(db *DB, playerID int64, runDestroyed, runScore int) []AchievementDef {
	if db == nil {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, a := range existing {
		has[a] = true
	}

	var unlocked []AchievementDef

	check := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_contact":
			return stats.Destroyed >= 1
		case "rock_breaker":
			return stats.Destroyed >= 100
		case "belt_cleaner":
			return stats.Destroyed >= 1000
		case "marksman":
			return runDestroyed >= 25
		case "high_roller":
			return runScore >= 500
		case "regular":
			return stats.Runs >= 10
		case "veteran":
			return stats.Level >= 10
		case "elite":
			return stats.Level >= 25
		case "legend":
			return stats.Level >= 50
		case "drifter":
			return stats.Playtime >= 3600
		}
		return false
	}

	for _, def := range Achievements {
		if check(def.ID) {
			if newlyUnlocked, err := db.UnlockAchievement(playerID, def.ID); err == nil && newlyUnlocked {
				unlocked = append(unlocked, def)
			}
		}
	}

	return unlocked
}
