package catalog

import "unicode/utf8"

// SelectChannels walks versions newest first and assigns every channel name
// the first version whose code maps to it. A channel code maps to the channel
// name starting with that character; when names share a first character the
// later name owns the code. The walk stops once every name is assigned, so an
// empty channelNames yields an empty result.
func SelectChannels(versions Ordered[Version], channelNames []string) Ordered[string] {
	var (
		namesByCode = make(map[ChannelCode]string, len(channelNames))
		selected    = NewOrdered[string](len(channelNames))
	)

	for _, name := range channelNames {
		code, _ := utf8.DecodeRuneInString(name)
		namesByCode[ChannelCode(code)] = name
	}

	// Distinct names after code collisions bound how many slots can be filled.
	slots := len(namesByCode)

	versions.Each(func(key string, version Version) bool {
		if selected.Len() == slots {
			return false
		}

		name, ok := namesByCode[version.Info.Channel]
		if !ok || selected.Has(name) {
			return true
		}

		selected.Set(name, key)

		return true
	})

	return selected
}
