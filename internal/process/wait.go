package process

import "time"

// waitDelay bounds how long Wait keeps reading output pipes after the
// process was killed.
const waitDelay = 5 * time.Second
