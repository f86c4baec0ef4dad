// Package naming decides the opaque name of every named entity of a run.
//
// A run owns one Table. The table keeps an independent memo map per
// Namespace, so a hierarchy node called "Tail" and a parameter called "Tail"
// receive unrelated tokens, while two nodes called "Tail" share one.
// Tokens come from a Minter; the default UUIDMinter renders 128 random bits
// as 32 lowercase hex characters.
//
// ParameterResolver layers the parameter rules on top of the table: reserved
// names and unselected names pass through, and names ending in one of the
// physics suffixes share the opaque base of their family:
//
//	Nose            ->  3f2a...c1
//	Nose_IsGrabbed  ->  3f2a...c1_IsGrabbed
//	Nose_Angle      ->  3f2a...c1_Angle
//
// PathRewriter maps slash-delimited hierarchy paths through the names the
// hierarchy phase already established and never mints linked names itself.
package naming
