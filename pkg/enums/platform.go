package enums

import "fmt"

// Platform identifies a social network a post can be delivered to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformGMB       Platform = "gmb"
)

var validPlatforms = []Platform{
	PlatformInstagram,
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformTikTok,
	PlatformGMB,
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Platform.
func (p Platform) IsValid() bool {
	for _, candidate := range validPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatform converts raw input into a Platform.
func ParsePlatform(value string) (Platform, error) {
	for _, candidate := range validPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q", value)
}

// ParsePlatforms converts a raw list, rejecting unknown values and duplicates.
func ParsePlatforms(values []string) ([]Platform, error) {
	seen := make(map[Platform]struct{}, len(values))
	platforms := make([]Platform, 0, len(values))
	for _, value := range values {
		platform, err := ParsePlatform(value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[platform]; dup {
			return nil, fmt.Errorf("duplicate platform %q", value)
		}
		seen[platform] = struct{}{}
		platforms = append(platforms, platform)
	}
	return platforms, nil
}
