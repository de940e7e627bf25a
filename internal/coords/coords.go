package coords

import (
	"fmt"
	"sort"
	"strings"
)

// PlatformType identifies a supported IDE platform distribution kind.
type PlatformType string

const (
	TypeIdeaCommunity PlatformType = "IC"
	TypeIdeaUltimate  PlatformType = "IU"
	TypeCLion         PlatformType = "CL"
	TypePyCharmCE     PlatformType = "PC"
	TypePyCharmPro    PlatformType = "PY"
	TypeGoLand        PlatformType = "GO"
	TypeRider         PlatformType = "RD"
	TypeGateway       PlatformType = "GW"
	TypeAndroidStudio PlatformType = "AI"
	TypeJPS           PlatformType = "JPS"
)

// Channel is the repository bucket a version resolves against.
type Channel string

const (
	ChannelRelease  Channel = "releases"
	ChannelSnapshot Channel = "snapshots"
)

const snapshotSuffix = "-SNAPSHOT"

// Coordinates are the concrete repository coordinates for a platform request.
type Coordinates struct {
	Type             PlatformType
	Group            string
	ArtifactName     string
	Version          string
	Channel          Channel
	SourcesAvailable bool
}

type platformDefinition struct {
	Group        string
	ArtifactName string
	// NeverSources marks distributions that ship without a sources artifact.
	NeverSources bool
	// PyCharmFamily selects the pycharmPC descriptor naming downstream.
	PyCharmFamily bool
	// SplitRoot marks distributions extracted into a core root plus a
	// separate test-framework root.
	SplitRoot bool
}

var platformDefinitions = map[PlatformType]platformDefinition{
	TypeIdeaCommunity: {Group: "com.jetbrains.intellij.idea", ArtifactName: "ideaIC"},
	TypeIdeaUltimate:  {Group: "com.jetbrains.intellij.idea", ArtifactName: "ideaIU"},
	TypeCLion:         {Group: "com.jetbrains.intellij.clion", ArtifactName: "clion"},
	TypePyCharmCE:     {Group: "com.jetbrains.intellij.pycharm", ArtifactName: "pycharmPC", PyCharmFamily: true},
	TypePyCharmPro:    {Group: "com.jetbrains.intellij.pycharm", ArtifactName: "pycharmPY", PyCharmFamily: true},
	TypeGoLand:        {Group: "com.jetbrains.intellij.goland", ArtifactName: "goland"},
	TypeRider:         {Group: "com.jetbrains.intellij.rider", ArtifactName: "riderRD", NeverSources: true},
	TypeGateway:       {Group: "com.jetbrains.gateway", ArtifactName: "JetBrainsGateway", NeverSources: true},
	TypeAndroidStudio: {Group: "com.google.android.studio", ArtifactName: "android-studio"},
	TypeJPS:           {Group: "com.jetbrains.intellij.idea", ArtifactName: "ideaJPS", SplitRoot: true},
}

// SupportedTypes returns the sorted list of platform types Resolve accepts.
func SupportedTypes() []PlatformType {
	types := make([]PlatformType, 0, len(platformDefinitions))
	for t := range platformDefinitions {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsSupported reports whether t is a known platform type.
func IsSupported(t PlatformType) bool {
	_, ok := platformDefinitions[t]
	return ok
}

// IsPyCharmFamily reports whether t resolves to a PyCharm product.
func IsPyCharmFamily(t PlatformType) bool {
	return platformDefinitions[t].PyCharmFamily
}

// IsSplitRoot reports whether t extracts into separate core and
// test-framework roots.
func IsSplitRoot(t PlatformType) bool {
	return platformDefinitions[t].SplitRoot
}

// ChannelFor derives the release channel from a version string. Versions
// carrying the snapshot suffix resolve against the snapshot channel.
func ChannelFor(version string) Channel {
	if strings.HasSuffix(version, snapshotSuffix) {
		return ChannelSnapshot
	}
	return ChannelRelease
}

// Warning is a non-fatal note produced while resolving coordinates.
type Warning string

// Resolve maps a platform request to repository coordinates. It is a pure
// function: no network or disk access. An unsupported type is a fatal error
// naming the full supported set; sources availability may be forced off for
// certain type/channel combinations even when requested.
func Resolve(t PlatformType, version string, wantSources bool) (Coordinates, []Warning, error) {
	def, ok := platformDefinitions[t]
	if !ok {
		return Coordinates{}, nil, fmt.Errorf("unsupported platform type %q; supported types: %s", t, supportedTypeList())
	}

	channel := ChannelFor(version)

	var warnings []Warning
	sources := wantSources
	switch {
	case def.NeverSources:
		sources = false
	case t == TypeCLion && wantSources && channel == ChannelSnapshot:
		warnings = append(warnings, Warning(fmt.Sprintf("sources are not published for %s snapshot builds; continuing without sources", def.ArtifactName)))
		sources = false
	}

	return Coordinates{
		Type:             t,
		Group:            def.Group,
		ArtifactName:     def.ArtifactName,
		Version:          version,
		Channel:          channel,
		SourcesAvailable: sources,
	}, warnings, nil
}

func supportedTypeList() string {
	types := SupportedTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
