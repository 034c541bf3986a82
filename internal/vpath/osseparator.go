package vpath

import "os"

var osSeparator = os.PathSeparator
