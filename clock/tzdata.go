package clock

// Embed the zone database so lookups do not depend on the host.
import _ "time/tzdata"
