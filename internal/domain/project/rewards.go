package project

// XP granted for creating a project.
const XPCreate = 10

// Reward returns the XP granted when a project enters status.
func Reward(status Status) int {
	switch status {
	case StatusEditing:
		return 20
	case StatusReady:
		return 50
	default:
		return 0
	}
}

// Earned returns the total XP a project has granted by the time it sits in
// status. Deleting the project revokes exactly this amount.
func Earned(status Status) int {
	total := XPCreate
	for _, s := range Pipeline {
		total += Reward(s)
		if s == status {
			break
		}
	}
	return total
}

func stageIndex(status Status) int {
	for i, s := range Pipeline {
		if s == status {
			return i
		}
	}
	return -1
}

func validPlatform(p Platform) bool {
	switch p {
	case PlatformTwitch, PlatformTikTok, PlatformYouTube, PlatformKick:
		return true
	}
	return false
}
