package item

// Default XP rewards.
const (
	XPCreative     = 100
	XPWork         = 50
	XPLearning     = 30
	XPOtherBlock   = 10
	XPTask         = 15
	XPFocusBonus   = 25
	defaultKind    = KindBase
	defaultTaskCat = CategoryHome
)

// AgendaXP returns the reward for an agenda block of the given kind.
func AgendaXP(kind string) int {
	switch kind {
	case KindCreative:
		return XPCreative
	case KindWork:
		return XPWork
	case KindLearning:
		return XPLearning
	default:
		return XPOtherBlock
	}
}

// DefaultItems returns the template a list is seeded with.
func DefaultItems(list List) []Item {
	switch list {
	case ListAgenda:
		return []Item{
			agendaBlock(KindWork, "The Grind (Work)", "Keep head down. Save energy.", "08:30", "19:30"),
			agendaBlock(KindTransit, "Commute & Decompress", "Music or podcasts. No doomscrolling.", "19:30", "20:15"),
			agendaBlock(KindBase, "Arrival & Reset", "Shower, food, change clothes. No screens.", "20:15", "21:00"),
			agendaBlock(KindCreative, "Power Block: Creation", "One task only: clip editing or thumbnail design.", "21:00", "22:00"),
			agendaBlock(KindLearning, "Power Block: Learning", "One tutorial or one pro stream breakdown.", "22:00", "22:45"),
			agendaBlock(KindSleep, "System Shutdown", "Pack bag, sleep.", "23:00", "23:30"),
		}
	case ListTasks:
		return []Item{
			task("t1", "Dishes Cleared", CategoryHome),
			task("t2", "Backpack Packed", CategoryAdmin),
			task("t3", "Outfit Laid Out", CategoryHome),
			task("t4", "Drink Water", CategoryHealth),
			task("t5", "Desk Wipe (5min)", CategoryHome),
		}
	case ListChecklist:
		return []Item{
			check("water", "Water bottle filled"),
			check("obs", "OBS scenes ready"),
			check("mic", "Mic check"),
			check("lights", "Lights on"),
			check("socials", "Go-live post scheduled"),
		}
	}
	return nil
}

func agendaBlock(kind, title, desc, start, end string) Item {
	return Item{
		ID:             kind,
		Title:          title,
		Desc:           desc,
		Kind:           kind,
		StartTime:      start,
		EndTime:        end,
		XPReward:       AgendaXP(kind),
		TranslationKey: kind,
	}
}

func task(id, title, category string) Item {
	return Item{ID: id, Title: title, Category: category, XPReward: XPTask, TranslationKey: id}
}

func check(id, title string) Item {
	return Item{ID: id, Title: title, TranslationKey: id}
}
