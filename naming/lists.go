package naming

import "strings"

// ReservedParameters are parameter names the host runtime drives itself.
// They are never renamed and are not offered for selection.
var ReservedParameters = []string{
	"AFK",
	"AngularY",
	"AvatarVersion",
	"Earmuffs",
	"EyeHeightAsMeters",
	"EyeHeightAsPercent",
	"GestureLeft",
	"GestureLeftWeight",
	"GestureRight",
	"GestureRightWeight",
	"Grounded",
	"InStation",
	"IsLocal",
	"IsOnFriendsList",
	"MuteSelf",
	"ScaleFactor",
	"ScaleFactorInverse",
	"ScaleModified",
	"Seated",
	"TrackingType",
	"Upright",
	"VelocityMagnitude",
	"VelocityX",
	"VelocityY",
	"VelocityZ",
	"Viseme",
	"Voice",
	"VRMode",
}

// FamilySuffixes mark a parameter as a companion of a physics-module base
// parameter. The suffix itself is kept in the opaque name.
var FamilySuffixes = []string{
	"_IsGrabbed",
	"_IsPosed",
	"_Angle",
	"_Stretch",
	"_Squish",
}

var reserved = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ReservedParameters))
	for _, name := range ReservedParameters {
		m[name] = struct{}{}
	}
	return m
}()

// IsReserved reports whether name is a reserved parameter.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// SplitFamily splits name into its family base and suffix. Names without a
// known suffix, and names that consist of a suffix only, return (name, "").
func SplitFamily(name string) (base, suffix string) {
	for _, s := range FamilySuffixes {
		if len(name) > len(s) && strings.HasSuffix(name, s) {
			return name[:len(name)-len(s)], s
		}
	}
	return name, ""
}
