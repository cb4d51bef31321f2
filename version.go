package simscope

// Version is the release of the simscope module.
const Version = "0.3.0"
