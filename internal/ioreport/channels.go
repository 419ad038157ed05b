package ioreport

import "strings"

// Channel group names reported by IOReport
const (
	GroupNameEnergyModel = "Energy Model"
	GroupNameCPUStats    = "CPU Stats"
	GroupNameGPUStats    = "GPU Stats"
	GroupNameSoCStats    = "SoC Stats"
)

// Channel names within the Energy Model group
const (
	ChannelNameCPUEnergy = "CPU Energy"
	ChannelNameGPUEnergy = "GPU Energy"
	channelPrefixANE     = "ANE"
)

type GroupKind int

const (
	GroupEnergyModel GroupKind = iota
	GroupCPUStats
	GroupGPUStats
	GroupSoCStats
	GroupOther
	GroupUnknown
)

// ChannelGroup is a classified channel group. Name carries the original
// provider string for the Other and Unknown kinds.
type ChannelGroup struct {
	Kind GroupKind
	Name string
}

// Groups known to IOReport that carry no energy counters. Classified as
// Other so diagnostics can tell them apart from genuinely new groups.
var otherGroups = map[string]struct{}{
	"AMC Stats":  {},
	"CLPC Stats": {},
	"PMP":        {},
}

// ClassifyGroup maps a provider group string to its tagged category.
// Unrecognized strings classify as Unknown, never as an error.
func ClassifyGroup(name string) ChannelGroup {
	switch name {
	case GroupNameEnergyModel:
		return ChannelGroup{Kind: GroupEnergyModel, Name: name}
	case GroupNameCPUStats:
		return ChannelGroup{Kind: GroupCPUStats, Name: name}
	case GroupNameGPUStats:
		return ChannelGroup{Kind: GroupGPUStats, Name: name}
	case GroupNameSoCStats:
		return ChannelGroup{Kind: GroupSoCStats, Name: name}
	}

	if _, ok := otherGroups[name]; ok {
		return ChannelGroup{Kind: GroupOther, Name: name}
	}

	return ChannelGroup{Kind: GroupUnknown, Name: name}
}

func (g ChannelGroup) String() string {
	return g.Name
}

type ChannelKind int

const (
	ChannelCPUEnergy ChannelKind = iota
	ChannelGPUEnergy
	ChannelANE
	ChannelUnknown
)

// ChannelName is a classified channel name. Name carries the original
// provider string.
type ChannelName struct {
	Kind ChannelKind
	Name string
}

// ClassifyChannel maps a provider channel string to its tagged category.
// ANE counters appear as several per-core channels ("ANE0", "ANE1", ...),
// hence the prefix match.
func ClassifyChannel(name string) ChannelName {
	switch {
	case name == ChannelNameCPUEnergy:
		return ChannelName{Kind: ChannelCPUEnergy, Name: name}
	case name == ChannelNameGPUEnergy:
		return ChannelName{Kind: ChannelGPUEnergy, Name: name}
	case strings.HasPrefix(name, channelPrefixANE):
		return ChannelName{Kind: ChannelANE, Name: name}
	default:
		return ChannelName{Kind: ChannelUnknown, Name: name}
	}
}

func (c ChannelName) String() string {
	return c.Name
}
