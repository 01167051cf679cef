package utils

//DefaultFPS is the output frame rate used when the input container does not report one
const DefaultFPS = 30.0

//DefaultCodec is the fourcc of produced videos
const DefaultCodec = "mp4v"

//OutputExtension is the container extension of produced videos
const OutputExtension = ".mp4"

//DefaultQueueSize is how many frames may wait between two pipeline stages
const DefaultQueueSize = 8

//MarkerRadius is the radius, in pixels, of the dot drawn on each landmark
const MarkerRadius = 8

//AllowedVideoExtensions is the list of upload extensions accepted, without the dot
var AllowedVideoExtensions = []string{"mp4", "mov", "avi"}
