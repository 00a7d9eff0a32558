package driver

import (
	"github.com/mitchellh/mapstructure"
)

// Session options understood by the driver. Any other name is stored and
// forwarded to the engine as is.
const (
	OptionBlocking         = "godb.query.blocking"
	OptionTableTypeMapping = "godb.metadata.table_type_mapping"
	OptionFetchSize        = "godb.fetch.size"
	OptionQueryTag         = "godb.query.tag"
)

// DefaultFetchSize is the number of rows fetched per round trip unless
// configured otherwise.
const DefaultFetchSize = 50

// sessionConf is the typed view of the session options used by one
// execution.
type sessionConf struct {
	Blocking         bool   `mapstructure:"godb.query.blocking"`
	TableTypeMapping string `mapstructure:"godb.metadata.table_type_mapping"`
	FetchSize        int    `mapstructure:"godb.fetch.size"`
	QueryTag         string `mapstructure:"godb.query.tag"`
}

func defaultConf() sessionConf {
	return sessionConf{
		Blocking:         true,
		TableTypeMapping: "NATIVE",
		FetchSize:        DefaultFetchSize,
	}
}

// decodeConf overlays the string options onto the defaults.
func decodeConf(opts map[string]string) (sessionConf, error) {
	conf := defaultConf()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &conf,
	})
	if err != nil {
		return conf, err
	}
	if err := dec.Decode(opts); err != nil {
		return defaultConf(), wrapError(InvalidArgument, err, "Invalid session option: %v", err)
	}
	if conf.FetchSize <= 0 {
		conf.FetchSize = DefaultFetchSize
	}
	return conf, nil
}
