package ebtext

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("ebscript")
