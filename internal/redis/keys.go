package redis

import "fmt"

const ns = "barberbook:v1"

func KeyCatalog() string {
	return ns + ":catalog:shops"
}

func KeyShop(shopID string) string {
	return fmt.Sprintf("%s:catalog:shop:%s", ns, shopID)
}

// KeyTakenSlots holds the bookings of one shop on one day.
func KeyTakenSlots(shopID, day string) string {
	return fmt.Sprintf("%s:shop:%s:day:%s:taken", ns, shopID, day)
}

func KeySession(id string) string {
	return fmt.Sprintf("%s:session:%s", ns, id)
}

// KeySubmitGuard marks a session whose confirmation is in flight.
func KeySubmitGuard(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:submitting", ns, sessionID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBookingsChanged() string {
	return ns + ":bookings:changed"
}
