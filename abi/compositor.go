package abi

// Compositor protocol: 5-word messages on an event channel, command code in
// the first word. Used by application ports; the library only carries the
// constants.
const (
	CompCreateWindow  = 0x1001
	CompPresent       = 0x1003
	CompSetTitle      = 0x1004
	CompWindowCreated = 0x2001
	CompKeyDown       = 0x3001
	CompKeyUp         = 0x3002
	CompMouseMove     = 0x3003
	CompMouseDown     = 0x3004
	CompMouseUp       = 0x3005
	CompWindowClose   = 0x3007
)

// ChanMsg is the 5-word event channel message.
type ChanMsg struct {
	Words [5]uint32 `struc:"[5]uint32,little"`
}
