package ldstream

import (
	"github.com/launchdarkly/go-config-monitor/interfaces"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
)

const (
	changeEvent = "change"
	resetEvent  = "reset"
)

type changeData struct {
	Name string
}

// parseChangeData parses the data of a "change" event. Unknown properties are ignored.
func parseChangeData(data []byte) (changeData, error) {
	ret := changeData{Name: interfaces.DefaultName}
	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "name":
			name, nonNull := r.StringOrNull()
			if nonNull {
				ret.Name = name
			}
		}
	}
	if err := r.Error(); err != nil {
		return changeData{}, err
	}
	return ret, nil
}
